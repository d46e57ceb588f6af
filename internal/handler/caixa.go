package handler

import (
	"net/http"
	"strconv"

	"caixapos/internal/apierror"
	"caixapos/internal/dto"
	"caixapos/internal/middleware"
	"caixapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre uma nova sessão de caixa
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCaixaRequest true "Dados de abertura"
// @Success 201 {object} dto.SessaoCaixaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	operadorID, err := uuid.Parse(claims.OperadorID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token sem operador válido"))
		return
	}

	resp, err := h.svc.Abrir(c.Request.Context(), operadorID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Fechar godoc
// @Summary Fecha a sessão de caixa com conferência cega
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FecharCaixaRequest true "Declaração de fechamento"
// @Success 200 {object} dto.FechamentoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimentacao godoc
// @Summary Registra uma movimentação avulsa (sangria, suprimento, etc.)
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimentacaoRequest true "Dados da movimentação"
// @Success 201 {object} dto.MovimentacaoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/movimentacao [post]
func (h *CaixaHandler) RegistrarMovimentacao(c *gin.Context) {
	var req dto.MovimentacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimentacao(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SessaoAtual godoc
// @Summary Retorna a sessão aberta do operador autenticado
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessaoCaixaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caixa/atual [get]
func (h *CaixaHandler) SessaoAtual(c *gin.Context) {
	claims := middleware.GetClaims(c)
	operadorID, err := uuid.Parse(claims.OperadorID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token sem operador válido"))
		return
	}
	resp, err := h.svc.SessaoAtual(c.Request.Context(), operadorID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("Nenhuma sessão de caixa aberta"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarMovimentacoes godoc
// @Summary Lista as movimentações de uma sessão
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Success 200 {array} dto.MovimentacaoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caixa/{id}/movimentacoes [get]
func (h *CaixaHandler) ListarMovimentacoes(c *gin.Context) {
	sessaoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de sessão inválido"))
		return
	}
	resp, err := h.svc.ListarMovimentacoes(c.Request.Context(), sessaoID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historico godoc
// @Summary Lista sessões fechadas, paginado
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param page query int false "Página (default 1)"
// @Param limit query int false "Itens por página (default 20)"
// @Success 200 {object} map[string]interface{}
// @Router /v1/caixa/historico [get]
func (h *CaixaHandler) Historico(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sessoes, total, err := h.svc.Historico(c.Request.Context(), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  sessoes,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
