package handler

import (
	"net/http"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/dto"
	"gestorpdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PagamentosHandler struct{ svc service.PagamentoService }

func NewPagamentosHandler(svc service.PagamentoService) *PagamentosHandler {
	return &PagamentosHandler{svc: svc}
}

// Listar godoc
// @Summary Lista os métodos de pagamento ativos na ordem de exibição
// @Tags pagamentos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.MetodoPagamentoResponse
// @Router /v1/pagamentos/metodos [get]
func (h *PagamentosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarAtivos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Simular godoc
// @Summary Simula a liquidação de um pagamento sem registrar venda
// @Tags pagamentos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SimularPagamentoRequest true "Valor, método e parcelas"
// @Success 200 {object} dto.CotacaoResponse
// @Failure 422 {object} apperror.Error
// @Router /v1/pagamentos/simular [post]
func (h *PagamentosHandler) Simular(c *gin.Context) {
	var req dto.SimularPagamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Simular(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Admin CRUD (administrador only, see router) ──────────────────────────────

func (h *PagamentosHandler) Criar(c *gin.Context) {
	var req dto.CriarMetodoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PagamentosHandler) Atualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperror.New("ID inválido"))
		return
	}
	var req dto.AtualizarMetodoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PagamentosHandler) Desativar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperror.New("ID inválido"))
		return
	}
	if err := h.svc.Desativar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
