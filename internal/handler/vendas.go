package handler

import (
	"net/http"
	"strconv"
	"time"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/dto"
	"gestorpdv/internal/middleware"
	"gestorpdv/internal/repository"
	"gestorpdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VendasHandler struct{ svc service.VendaService }

func NewVendasHandler(svc service.VendaService) *VendasHandler { return &VendasHandler{svc: svc} }

// Registrar godoc
// @Summary Registra uma venda na sessão de caixa aberta
// @Tags vendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarVendaRequest true "Itens, método e parcelas"
// @Success 201 {object} dto.VendaResponse
// @Failure 409 {object} apperror.Error
// @Failure 422 {object} apperror.Error
// @Router /v1/vendas [post]
func (h *VendasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	operadorID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apperror.New("ID de usuário inválido"))
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), operadorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Anular godoc
// @Summary Anula uma venda concluída e cancela seus recebíveis pendentes
// @Tags vendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Param body body dto.AnularVendaRequest true "Motivo da anulação"
// @Success 204
// @Failure 409 {object} apperror.Error
// @Router /v1/vendas/{id}/anular [post]
func (h *VendasHandler) Anular(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperror.New("ID inválido"))
		return
	}
	var req dto.AnularVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Anular(c.Request.Context(), id, req.Motivo); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VendasHandler) Obter(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VendasHandler) Listar(c *gin.Context) {
	filter := repository.VendaFilter{Estado: c.Query("estado")}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if desde := c.Query("desde"); desde != "" {
		if t, err := time.Parse("2006-01-02", desde); err == nil {
			filter.Desde = &t
		}
	}
	if ate := c.Query("ate"); ate != "" {
		if t, err := time.Parse("2006-01-02", ate); err == nil {
			filter.Ate = &t
		}
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
