package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
)

// TagService manages a user's tags. Every method is scoped to ownerID.
type TagService struct {
	repo   repository.TagRepository
	logger *slog.Logger
}

func NewTagService(repo repository.TagRepository, logger *slog.Logger) *TagService {
	return &TagService{repo: repo, logger: logger}
}

func (s *TagService) Create(ctx context.Context, ownerID, name string) (*model.Tag, error) {
	name, err := cleanName("name", name)
	if err != nil {
		return nil, err
	}

	tag := &model.Tag{UserID: ownerID, Name: name}
	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}

	s.logger.Info("tag created", slog.String("id", tag.ID), slog.String("userID", ownerID))
	return tag, nil
}

// List returns the owner's tags ordered by name, Z to A. With assignedOnly,
// only tags used by at least one recipe are returned.
func (s *TagService) List(ctx context.Context, ownerID string, assignedOnly bool) ([]model.Tag, error) {
	tags, err := s.repo.List(ctx, ownerID, repository.AttrListOptions{AssignedOnly: assignedOnly})
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) Update(ctx context.Context, ownerID, id, name string) (*model.Tag, error) {
	name, err := cleanName("name", name)
	if err != nil {
		return nil, err
	}

	tag, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	tag.Name = name
	if err := s.repo.Update(ctx, tag); err != nil {
		return nil, fmt.Errorf("updating tag: %w", err)
	}
	return tag, nil
}

func (s *TagService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("tag deleted", slog.String("id", id), slog.String("userID", ownerID))
	return nil
}
