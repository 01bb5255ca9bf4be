package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
)

// IngredientService manages a user's ingredients. Every method is scoped to ownerID.
type IngredientService struct {
	repo   repository.IngredientRepository
	logger *slog.Logger
}

func NewIngredientService(repo repository.IngredientRepository, logger *slog.Logger) *IngredientService {
	return &IngredientService{repo: repo, logger: logger}
}

func (s *IngredientService) Create(ctx context.Context, ownerID, name string) (*model.Ingredient, error) {
	name, err := cleanName("name", name)
	if err != nil {
		return nil, err
	}

	ingredient := &model.Ingredient{UserID: ownerID, Name: name}
	if err := s.repo.Create(ctx, ingredient); err != nil {
		return nil, fmt.Errorf("creating ingredient: %w", err)
	}

	s.logger.Info("ingredient created", slog.String("id", ingredient.ID), slog.String("userID", ownerID))
	return ingredient, nil
}

// List returns the owner's ingredients ordered by name, Z to A. With assignedOnly,
// only ingredients used by at least one recipe are returned.
func (s *IngredientService) List(ctx context.Context, ownerID string, assignedOnly bool) ([]model.Ingredient, error) {
	ingredients, err := s.repo.List(ctx, ownerID, repository.AttrListOptions{AssignedOnly: assignedOnly})
	if err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *IngredientService) Update(ctx context.Context, ownerID, id, name string) (*model.Ingredient, error) {
	name, err := cleanName("name", name)
	if err != nil {
		return nil, err
	}

	ingredient, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	ingredient.Name = name
	if err := s.repo.Update(ctx, ingredient); err != nil {
		return nil, fmt.Errorf("updating ingredient: %w", err)
	}
	return ingredient, nil
}

func (s *IngredientService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("ingredient deleted", slog.String("id", id), slog.String("userID", ownerID))
	return nil
}
