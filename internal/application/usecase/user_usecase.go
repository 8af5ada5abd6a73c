package usecase

import (
	"context"

	"github.com/jhoicas/cupones-api/internal/application/auth"
	"github.com/jhoicas/cupones-api/internal/application/dto"
	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// List admin ve todos los usuarios; el resto solo los de su empresa.
func (uc *UserUseCase) List(ctx context.Context, p *auth.Principal, page dto.PageRequest) (*dto.UserListResponse, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	page.DefaultPage()

	var (
		list []*entity.User
		err  error
	)
	if p.IsAdmin() {
		list, err = uc.repo.List(ctx, page.Limit, page.Offset)
	} else {
		list, err = uc.repo.ListByCompany(ctx, p.CompanyID, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, auth.ToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	}, nil
}
