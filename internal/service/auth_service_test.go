package service_test

import (
	"context"
	"testing"

	"gestorpdv/internal/config"
	"gestorpdv/internal/dto"
	"gestorpdv/internal/model"
	"gestorpdv/internal/repository"
	"gestorpdv/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

var _ repository.UsuarioRepository = (*fakeUsuarioRepo)(nil)

func newFakeUsuarioRepo() *fakeUsuarioRepo {
	return &fakeUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (f *fakeUsuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.usuarios[u.ID] = &cp
	return nil
}

func (f *fakeUsuarioRepo) FindByUsername(ctx context.Context, username string) (*model.Usuario, error) {
	for _, u := range f.usuarios {
		if u.Username == username && u.Ativo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := f.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsuarioRepo) List(ctx context.Context, incluirInativos bool) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range f.usuarios {
		if u.Ativo || incluirInativos {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsuarioRepo) Update(ctx context.Context, u *model.Usuario) error {
	cp := *u
	f.usuarios[u.ID] = &cp
	return nil
}

func (f *fakeUsuarioRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if u, ok := f.usuarios[id]; ok {
		u.Ativo = false
	}
	return nil
}

func (f *fakeUsuarioRepo) Reativar(ctx context.Context, id uuid.UUID) error {
	if u, ok := f.usuarios[id]; ok {
		u.Ativo = true
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "segredo-de-teste",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
}

func criarOperador(t *testing.T, svc service.AuthService) *dto.UsuarioResponse {
	t.Helper()
	resp, err := svc.CriarUsuario(context.Background(), dto.CriarUsuarioRequest{
		Username: "maria.operadora",
		Nome:     "Maria Silva",
		Password: "senha-secreta-123",
		Rol:      "operador",
	})
	require.NoError(t, err)
	return resp
}

func TestAuth_LoginComSenhaCorreta(t *testing.T) {
	svc := service.NewAuthService(newFakeUsuarioRepo(), testConfig())
	criarOperador(t, svc)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria.operadora",
		Password: "senha-secreta-123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "operador", resp.User.Rol)

	// o token carrega os claims que o middleware espera
	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("segredo-de-teste"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "maria.operadora", claims["username"])
	assert.Equal(t, "operador", claims["rol"])
	assert.NotEmpty(t, claims["user_id"])
}

func TestAuth_LoginSenhaErrada(t *testing.T) {
	svc := service.NewAuthService(newFakeUsuarioRepo(), testConfig())
	criarOperador(t, svc)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria.operadora",
		Password: "senha-errada",
	})
	assert.EqualError(t, err, "credenciais inválidas")
}

func TestAuth_LoginUsuarioInexistenteOuInativo(t *testing.T) {
	repo := newFakeUsuarioRepo()
	svc := service.NewAuthService(repo, testConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "ninguem", Password: "tanto-faz",
	})
	assert.EqualError(t, err, "credenciais inválidas")

	user := criarOperador(t, svc)
	require.NoError(t, svc.DesativarUsuario(context.Background(), uuid.MustParse(user.ID)))

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria.operadora", Password: "senha-secreta-123",
	})
	assert.EqualError(t, err, "credenciais inválidas")
}

func TestAuth_Refresh(t *testing.T) {
	svc := service.NewAuthService(newFakeUsuarioRepo(), testConfig())
	criarOperador(t, svc)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria.operadora", Password: "senha-secreta-123",
	})
	require.NoError(t, err)

	renovado, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renovado.AccessToken)
	assert.Equal(t, login.User.ID, renovado.User.ID)
}

func TestAuth_RefreshTokenInvalido(t *testing.T) {
	svc := service.NewAuthService(newFakeUsuarioRepo(), testConfig())

	_, err := svc.Refresh(context.Background(), "nao-e-um-jwt")
	assert.Error(t, err)
}

func TestAuth_RefreshUsuarioDesativado(t *testing.T) {
	svc := service.NewAuthService(newFakeUsuarioRepo(), testConfig())
	user := criarOperador(t, svc)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria.operadora", Password: "senha-secreta-123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DesativarUsuario(context.Background(), uuid.MustParse(user.ID)))

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.EqualError(t, err, "usuário não encontrado ou inativo")
}

func TestAuth_CicloDeVidaDoUsuario(t *testing.T) {
	svc := service.NewAuthService(newFakeUsuarioRepo(), testConfig())
	user := criarOperador(t, svc)
	id := uuid.MustParse(user.ID)

	// promoção a supervisor com troca de senha
	atualizado, err := svc.AtualizarUsuario(context.Background(), id, dto.AtualizarUsuarioRequest{
		Rol:      "supervisor",
		Password: "nova-senha-forte",
	})
	require.NoError(t, err)
	assert.Equal(t, "supervisor", atualizado.Rol)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria.operadora", Password: "nova-senha-forte",
	})
	require.NoError(t, err)

	// desativar tira da listagem padrão; reativar devolve
	require.NoError(t, svc.DesativarUsuario(context.Background(), id))
	ativos, err := svc.ListarUsuarios(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, ativos)

	todos, err := svc.ListarUsuarios(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, todos, 1)

	require.NoError(t, svc.ReativarUsuario(context.Background(), id))
	ativos, err = svc.ListarUsuarios(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, ativos, 1)
}
