package service

import (
	"context"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/dto"
	"gestorpdv/internal/model"
	"gestorpdv/internal/repository"

	"github.com/google/uuid"
)

// ProdutoService is the catalog CRUD used by the PDV front end.
type ProdutoService interface {
	Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error)
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
	ObterPorBarcode(ctx context.Context, barcode string) (*dto.ProdutoResponse, error)
	Listar(ctx context.Context, incluirInativos bool) ([]dto.ProdutoResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
}

type produtoService struct {
	repo repository.ProdutoRepository
}

func NewProdutoService(repo repository.ProdutoRepository) ProdutoService {
	return &produtoService{repo: repo}
}

func (s *produtoService) Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error) {
	if !req.PrecoVenda.IsPositive() {
		return nil, apperror.Validation(apperror.CodeInvalidAmount, "preco_venda",
			"Preço de venda deve ser maior que zero")
	}
	p := &model.Produto{
		Nome:         req.Nome,
		CodigoBarras: req.CodigoBarras,
		PrecoVenda:   req.PrecoVenda,
		Ativo:        true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound(apperror.CodeProductNotFound, "Produto não encontrado")
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) ObterPorBarcode(ctx context.Context, barcode string) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound(apperror.CodeProductNotFound, "Produto não encontrado")
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) Listar(ctx context.Context, incluirInativos bool) ([]dto.ProdutoResponse, error) {
	produtos, err := s.repo.List(ctx, incluirInativos)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProdutoResponse, 0, len(produtos))
	for i := range produtos {
		resp = append(resp, *produtoToResponse(&produtos[i]))
	}
	return resp, nil
}

func (s *produtoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound(apperror.CodeProductNotFound, "Produto não encontrado")
	}
	if req.Nome != nil {
		p.Nome = *req.Nome
	}
	if req.CodigoBarras != nil {
		p.CodigoBarras = req.CodigoBarras
	}
	if req.PrecoVenda != nil {
		if !req.PrecoVenda.IsPositive() {
			return nil, apperror.Validation(apperror.CodeInvalidAmount, "preco_venda",
				"Preço de venda deve ser maior que zero")
		}
		p.PrecoVenda = *req.PrecoVenda
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) Desativar(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.NotFound(apperror.CodeProductNotFound, "Produto não encontrado")
	}
	return s.repo.Desativar(ctx, id)
}

func produtoToResponse(p *model.Produto) *dto.ProdutoResponse {
	return &dto.ProdutoResponse{
		ID:           p.ID.String(),
		Nome:         p.Nome,
		CodigoBarras: p.CodigoBarras,
		PrecoVenda:   p.PrecoVenda,
		Ativo:        p.Ativo,
	}
}
