package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/data/repos"
	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

// AdminOverview is the cross-tenant snapshot the admin dashboard renders.
type AdminOverview struct {
	Users    []*types.User    `json:"users"`
	Projects []*types.Project `json:"projects"`
}

type AdminService interface {
	ListUsers(ctx context.Context) ([]*types.User, error)
	ListProjects(ctx context.Context) ([]*types.Project, error)
	Overview(ctx context.Context) (*AdminOverview, error)
}

type adminService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	projectRepo repos.ProjectRepo
}

func NewAdminService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, projectRepo repos.ProjectRepo) AdminService {
	return &adminService{
		db:          db,
		log:         log.With("service", "AdminService"),
		userRepo:    userRepo,
		projectRepo: projectRepo,
	}
}

func (as *adminService) ListUsers(ctx context.Context) ([]*types.User, error) {
	users, err := as.userRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (as *adminService) ListProjects(ctx context.Context) ([]*types.Project, error) {
	projects, err := as.projectRepo.ListAllWithOwner(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (as *adminService) Overview(ctx context.Context) (*AdminOverview, error) {
	var out AdminOverview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := as.ListUsers(gctx)
		if err != nil {
			return err
		}
		out.Users = users
		return nil
	})
	g.Go(func() error {
		projects, err := as.ListProjects(gctx)
		if err != nil {
			return err
		}
		out.Projects = projects
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
