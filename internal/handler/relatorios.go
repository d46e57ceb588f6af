package handler

import (
	"net/http"
	"time"

	"caixapos/internal/apierror"
	"caixapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RelatorioHandler struct{ svc service.RelatorioService }

func NewRelatorioHandler(svc service.RelatorioService) *RelatorioHandler {
	return &RelatorioHandler{svc: svc}
}

// Consolidado godoc
// @Summary Relatório consolidado de fluxo de caixa por período
// @Tags relatorios
// @Produce json
// @Security BearerAuth
// @Param de query string true "Início do período (YYYY-MM-DD)"
// @Param ate query string true "Fim do período (YYYY-MM-DD, inclusivo)"
// @Param operador_id query string false "Filtra por operador"
// @Success 200 {object} dto.ConsolidadoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/relatorios/consolidado [get]
func (h *RelatorioHandler) Consolidado(c *gin.Context) {
	de, err := time.Parse("2006-01-02", c.Query("de"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parâmetro 'de' inválido (use YYYY-MM-DD)"))
		return
	}
	ate, err := time.Parse("2006-01-02", c.Query("ate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parâmetro 'ate' inválido (use YYYY-MM-DD)"))
		return
	}
	if ate.Before(de) {
		c.JSON(http.StatusBadRequest, apierror.New("Período inválido: 'ate' anterior a 'de'"))
		return
	}
	// inclusive end of day
	ate = ate.Add(24*time.Hour - time.Nanosecond)

	var operadorID *uuid.UUID
	if raw := c.Query("operador_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("operador_id inválido"))
			return
		}
		operadorID = &id
	}

	resp, err := h.svc.Consolidar(c.Request.Context(), de, ate, operadorID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
