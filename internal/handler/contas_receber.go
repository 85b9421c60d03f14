package handler

import (
	"net/http"
	"strconv"
	"time"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/repository"
	"gestorpdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContasReceberHandler struct{ svc service.ReceberService }

func NewContasReceberHandler(svc service.ReceberService) *ContasReceberHandler {
	return &ContasReceberHandler{svc: svc}
}

// Listar godoc
// @Summary Lista contas a receber, filtráveis por status e vencimento
// @Tags contas-receber
// @Produce json
// @Security BearerAuth
// @Param status query string false "pendente | recebida | cancelada"
// @Param vence_ate query string false "Data limite de vencimento (YYYY-MM-DD)"
// @Success 200 {object} dto.ContaReceberListResponse
// @Router /v1/contas-receber [get]
func (h *ContasReceberHandler) Listar(c *gin.Context) {
	filter := repository.ContaFilter{Status: c.Query("status")}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if venceAte := c.Query("vence_ate"); venceAte != "" {
		if t, err := time.Parse("2006-01-02", venceAte); err == nil {
			filter.VenceAte = &t
		}
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarRecebimento godoc
// @Summary Dá baixa em uma conta pendente (pendente → recebida)
// @Tags contas-receber
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da conta"
// @Success 200 {object} dto.ContaReceberResponse
// @Failure 409 {object} apperror.Error
// @Router /v1/contas-receber/{id}/baixa [post]
func (h *ContasReceberHandler) RegistrarRecebimento(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperror.New("ID inválido"))
		return
	}
	resp, err := h.svc.RegistrarRecebimento(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
