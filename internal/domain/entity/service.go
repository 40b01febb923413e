package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"workpro/internal/domain/identity"
	"workpro/internal/domain/versioning"

	"golang.org/x/exp/slog"
)

// Servicer интерфейс сервиса сущностей
type Servicer interface {
	// Get возвращает сущность; её ETag вычисляется через Entity.ETag
	Get(ctx context.Context, tenantID, entityType, id string) (*Entity, error)

	// Update применяет патч при совпадении If-Match с текущим ETag
	Update(ctx context.Context, tenantID, entityType, id, ifMatch string, patch map[string]any) (*Entity, error)

	// Reconcile применяет патч клиента, если сервер не менял сущность после clientUpdatedAt
	Reconcile(ctx context.Context, in ReconcileInput) (*Entity, *ReconcileConflict, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "entity_service"),
	}
}

func (s *Service) Get(ctx context.Context, tenantID, entityType, id string) (*Entity, error) {
	if tenantID == "" {
		return nil, identity.ErrMissingTenantContext
	}
	e, err := s.repo.Get(ctx, tenantID, typeOrDefault(entityType), id)
	if err != nil {
		return nil, fmt.Errorf("get entity: %w", err)
	}
	return e, nil
}

func (s *Service) Update(ctx context.Context, tenantID, entityType, id, ifMatch string, patch map[string]any) (*Entity, error) {
	if tenantID == "" {
		return nil, identity.ErrMissingTenantContext
	}
	entityType = typeOrDefault(entityType)

	current, err := s.repo.Get(ctx, tenantID, entityType, id)
	if err != nil {
		return nil, fmt.Errorf("load entity: %w", err)
	}
	if err := versioning.ValidatePreconditionMatch(ifMatch, current.ETag()); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateFields(ctx, tenantID, entityType, id, current.Version, patch)
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			// тег, который видел клиент, устарел между чтением и записью
			return nil, versioning.ErrPreconditionFailed
		}
		return nil, fmt.Errorf("update entity: %w", err)
	}
	return updated, nil
}

func (s *Service) Reconcile(ctx context.Context, in ReconcileInput) (*Entity, *ReconcileConflict, error) {
	if in.TenantID == "" {
		return nil, nil, identity.ErrMissingTenantContext
	}
	entityType := typeOrDefault(in.EntityType)

	current, err := s.repo.Get(ctx, in.TenantID, entityType, in.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load entity: %w", err)
	}

	if current.UpdatedAt.After(in.ClientUpdatedAt) {
		return nil, conflictFor(current, in.Patch), nil
	}

	updated, err := s.repo.UpdateFields(ctx, in.TenantID, entityType, in.ID, current.Version, in.Patch)
	if err == nil {
		return updated, nil, nil
	}
	if !errors.Is(err, ErrVersionConflict) {
		return nil, nil, fmt.Errorf("apply patch: %w", err)
	}

	// другой писатель успел раньше: его запись новее того, что видел клиент
	fresh, err := s.repo.Get(ctx, in.TenantID, entityType, in.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("reload entity: %w", err)
	}
	s.log.Info("reconcile lost CAS race", "type", entityType, "id", in.ID, "version", fresh.Version)
	return nil, conflictFor(fresh, in.Patch), nil
}

func conflictFor(current *Entity, patch map[string]any) *ReconcileConflict {
	return &ReconcileConflict{
		Fields:  DiffFields(current.Fields, patch),
		Current: current,
	}
}

// DiffFields возвращает отсортированные ключи патча, значения которых
// отличаются от текущих значений на сервере.
func DiffFields(current, patch map[string]any) []string {
	out := make([]string, 0, len(patch))
	for k, v := range patch {
		cur, ok := current[k]
		if !ok || !jsonEqual(cur, v) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// jsonEqual сравнивает значения после приведения к JSON-представлению,
// чтобы 1 и 1.0 или разные типы срезов считались равными.
func jsonEqual(a, b any) bool {
	na, errA := normalizeJSON(a)
	nb, errB := normalizeJSON(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return reflect.DeepEqual(na, nb)
}

func normalizeJSON(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func typeOrDefault(entityType string) string {
	if entityType == "" {
		return DefaultType
	}
	return entityType
}
