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

type PedidoHandler struct{ svc service.PedidoService }

func NewPedidoHandler(svc service.PedidoService) *PedidoHandler { return &PedidoHandler{svc: svc} }

func operadorFromToken(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	id, err := uuid.Parse(claims.OperadorID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token sem operador válido"))
		return uuid.Nil, false
	}
	return id, true
}

// Criar godoc
// @Summary Finaliza uma venda com divisão de pagamento
// @Tags pedidos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CriarPedidoRequest true "Dados do pedido"
// @Success 201 {object} dto.PedidoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/pedidos [post]
func (h *PedidoHandler) Criar(c *gin.Context) {
	var req dto.CriarPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operadorID, ok := operadorFromToken(c)
	if !ok {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), operadorID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegistrarPagamento godoc
// @Summary Registra parcelas adicionais em um pedido aberto
// @Tags pedidos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Param body body dto.RegistrarPagamentoRequest true "Parcelas"
// @Success 200 {object} dto.PedidoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/pedidos/{id}/pagamentos [post]
func (h *PedidoHandler) RegistrarPagamento(c *gin.Context) {
	pedidoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de pedido inválido"))
		return
	}
	var req dto.RegistrarPagamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operadorID, ok := operadorFromToken(c)
	if !ok {
		return
	}
	resp, err := h.svc.RegistrarPagamento(c.Request.Context(), operadorID, pedidoID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmarPagamento godoc
// @Summary Confirma (captura) um pagamento pendente
// @Tags pagamentos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pagamento"
// @Success 200 {object} dto.PedidoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/pagamentos/{id}/confirmar [post]
func (h *PedidoHandler) ConfirmarPagamento(c *gin.Context) {
	pagamentoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de pagamento inválido"))
		return
	}
	operadorID, ok := operadorFromToken(c)
	if !ok {
		return
	}
	resp, err := h.svc.ConfirmarPagamento(c.Request.Context(), operadorID, pagamentoID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary Cancela um pedido, estornando os valores capturados
// @Tags pedidos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Param body body dto.CancelarPedidoRequest true "Motivo do cancelamento"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/pedidos/{id} [delete]
func (h *PedidoHandler) Cancelar(c *gin.Context) {
	pedidoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de pedido inválido"))
		return
	}
	var req dto.CancelarPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operadorID, ok := operadorFromToken(c)
	if !ok {
		return
	}
	if err := h.svc.Cancelar(c.Request.Context(), operadorID, pedidoID, req.Motivo); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Obter godoc
// @Summary Retorna um pedido com itens e pagamentos
// @Tags pedidos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Success 200 {object} dto.PedidoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/pedidos/{id} [get]
func (h *PedidoHandler) Obter(c *gin.Context) {
	pedidoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de pedido inválido"))
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), pedidoID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary Lista pedidos com filtros de data e status
// @Tags pedidos
// @Produce json
// @Security BearerAuth
// @Param data query string false "Data (YYYY-MM-DD)"
// @Param status query string false "Status do pedido"
// @Param page query int false "Página (default 1)"
// @Param limit query int false "Itens por página (default 50)"
// @Success 200 {object} dto.PedidoListResponse
// @Router /v1/pedidos [get]
func (h *PedidoHandler) Listar(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter := dto.PedidoFilter{
		Data:   c.Query("data"),
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
