package products

import (
	"context"
	"log/slog"
)

// ServiceConfig carries the optional collaborators of Service.
type ServiceConfig struct {
	Logger    *slog.Logger
	Publisher Publisher
	Metrics   OperationRecorder
}

// Service implements the product use cases on top of a Repository.
type Service struct {
	repo      Repository
	logger    *slog.Logger
	publisher Publisher
	metrics   OperationRecorder
}

// NewService constructs a Service.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		logger:    logger,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
	}
}

// List returns every stored product ordered by id.
func (s *Service) List(ctx context.Context) (out []ProductDTO, err error) {
	defer s.observe(OpList, &err)

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]ProductDTO, 0, len(items))
	for _, item := range items {
		out = append(out, DTOFromEntity(item))
	}
	return out, nil
}

// Get returns the product with id or a *NotFoundError.
func (s *Service) Get(ctx context.Context, id int64) (dto ProductDTO, err error) {
	defer s.observe(OpGet, &err)

	p, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ProductDTO{}, err
	}
	if !ok {
		return ProductDTO{}, &NotFoundError{Op: OpGet, ID: id}
	}
	return DTOFromEntity(p), nil
}

// Create persists dto as a new product. Any caller-supplied id is discarded
// so storage always assigns a fresh one.
func (s *Service) Create(ctx context.Context, dto ProductDTO) (_ ProductDTO, err error) {
	defer s.observe(OpCreate, &err)

	dto.ID = nil
	saved, err := s.repo.Save(ctx, EntityFromDTO(dto))
	if err != nil {
		return ProductDTO{}, err
	}
	dto.ID = copyID(saved.ID)
	s.publish(ctx, ActionCreated, *dto.ID)
	return dto, nil
}

// Update writes dto under id, replacing every field. It does not check for
// an existing row: a missing id is inserted.
func (s *Service) Update(ctx context.Context, id int64, dto ProductDTO) (_ ProductDTO, err error) {
	defer s.observe(OpUpdate, &err)

	if err := checkID(id); err != nil {
		return ProductDTO{}, err
	}
	dto.ID = &id
	if _, err := s.repo.Save(ctx, EntityFromDTO(dto)); err != nil {
		return ProductDTO{}, err
	}
	s.publish(ctx, ActionUpdated, id)
	return dto, nil
}

// Delete removes the product with id or returns a *NotFoundError.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	defer s.observe(OpDelete, &err)

	_, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Op: OpDelete, ID: id}
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, ActionDeleted, id)
	return nil
}

// publish never fails the caller; the write has already been committed.
func (s *Service) publish(ctx context.Context, action Action, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ChangeEvent{Action: action, ProductID: id}); err != nil {
		s.logger.Warn("publish product event",
			slog.String("action", string(action)),
			slog.Int64("product_id", id),
			slog.Any("error", err),
		)
	}
}

func (s *Service) observe(op Op, err *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveOperation(string(op), *err)
}
