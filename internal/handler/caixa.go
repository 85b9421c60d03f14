package handler

import (
	"net/http"
	"strconv"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/dto"
	"gestorpdv/internal/middleware"
	"gestorpdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre uma nova sessão de caixa para o operador autenticado
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCaixaRequest true "Dados de abertura"
// @Success 201 {object} dto.SessaoCaixaResponse
// @Failure 409 {object} apperror.Error
// @Router /v1/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	operadorID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apperror.New("ID de usuário inválido"))
		return
	}

	resp, err := h.svc.Abrir(c.Request.Context(), operadorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Fechar godoc
// @Summary Fecha a sessão de caixa com conferência do valor contado
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FecharCaixaRequest true "Dados de fechamento"
// @Success 200 {object} dto.SessaoCaixaResponse
// @Failure 409 {object} apperror.Error
// @Failure 422 {object} apperror.Error
// @Router /v1/caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Atual godoc
// @Summary Retorna a sessão aberta do operador autenticado
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessaoCaixaResponse
// @Failure 404 {object} apperror.Error
// @Router /v1/caixa/atual [get]
func (h *CaixaHandler) Atual(c *gin.Context) {
	claims := middleware.GetClaims(c)
	operadorID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apperror.New("ID de usuário inválido"))
		return
	}
	resp, err := h.svc.ObterAtual(c.Request.Context(), operadorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter returns one session by id (supervisors reviewing a past close).
func (h *CaixaHandler) Obter(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObterSessao(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historico returns a paginated list of closed cash sessions.
func (h *CaixaHandler) Historico(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.Historico(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
