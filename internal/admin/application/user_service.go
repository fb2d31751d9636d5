package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

type userService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.Find(ctx)
}

func (s *userService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: user id must not be empty", domain.ErrInvalidInput)
	}
	return s.repo.Delete(ctx, id)
}

type paymentService struct {
	repo PaymentRepository
}

func NewPaymentService(repo PaymentRepository) PaymentService {
	return &paymentService{repo: repo}
}

func (s *paymentService) List(ctx context.Context) ([]domain.PaymentRecord, error) {
	return s.repo.Find(ctx)
}
