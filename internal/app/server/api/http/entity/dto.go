package entity

import (
	"time"

	"workpro/internal/domain/entity"
)

type getEntityInput struct {
	ID          string `path:"id"`
	EntityType  string `query:"entityType" default:"WorkOrder"`
	IfNoneMatch string `header:"If-None-Match"`
}

type entityOutput struct {
	ETag string `header:"ETag"`
	Body *entity.Entity
}

type updateEntityInput struct {
	ID         string `path:"id"`
	EntityType string `query:"entityType" default:"WorkOrder"`
	IfMatch    string `header:"If-Match" doc:"ETag of the version the client edited"`
	Body       UpdateEntityRequest
}

type UpdateEntityRequest struct {
	Fields map[string]any `json:"fields" doc:"Fields to merge into the entity"`
}

type reconcileEntityInput struct {
	ID         string `path:"id"`
	EntityType string `query:"entityType" default:"WorkOrder"`
	Body       ReconcileRequest
}

type ReconcileRequest struct {
	Patch           map[string]any `json:"patch"`
	ClientUpdatedAt time.Time      `json:"clientUpdatedAt" doc:"updatedAt of the entity as last seen by the client"`
}
