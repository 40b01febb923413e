package entity

import (
	"fmt"
	"slices"
)

// DefaultAppliers - обработчики для сущностей, которые синхронизирует мобильный клиент.
func DefaultAppliers() []Applier {
	return []Applier{
		WorkOrderApplier{},
		AssetApplier{},
		InventoryItemApplier{},
		PermitApplier{},
	}
}

type WorkOrderApplier struct{}

func (WorkOrderApplier) EntityType() string { return "WorkOrder" }

func (WorkOrderApplier) Validate(op Operation, payload map[string]any) error {
	if op == OperationCreate {
		if err := requireString(payload, "title"); err != nil {
			return err
		}
	}
	if err := oneOf(payload, "status", "open", "in_progress", "on_hold", "completed", "cancelled"); err != nil {
		return err
	}
	return oneOf(payload, "priority", "low", "medium", "high", "critical")
}

type AssetApplier struct{}

func (AssetApplier) EntityType() string { return "Asset" }

func (AssetApplier) Validate(op Operation, payload map[string]any) error {
	if op == OperationCreate {
		if err := requireString(payload, "name"); err != nil {
			return err
		}
	}
	return oneOf(payload, "status", "active", "inactive", "maintenance", "retired")
}

type InventoryItemApplier struct{}

func (InventoryItemApplier) EntityType() string { return "InventoryItem" }

func (InventoryItemApplier) Validate(op Operation, payload map[string]any) error {
	if op == OperationCreate {
		if err := requireString(payload, "sku"); err != nil {
			return err
		}
	}
	return nonNegative(payload, "quantity")
}

type PermitApplier struct{}

func (PermitApplier) EntityType() string { return "Permit" }

func (PermitApplier) Validate(_ Operation, payload map[string]any) error {
	return oneOf(payload, "status", "draft", "pending", "approved", "rejected", "expired")
}

func requireString(payload map[string]any, key string) error {
	v, ok := payload[key]
	if !ok {
		return fmt.Errorf("%w: %s is required", ErrInvalidPayload, key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidPayload, key)
	}
	return nil
}

func oneOf(payload map[string]any, key string, allowed ...string) error {
	v, ok := payload[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok || !slices.Contains(allowed, s) {
		return fmt.Errorf("%w: %s must be one of %v", ErrInvalidPayload, key, allowed)
	}
	return nil
}

func nonNegative(payload map[string]any, key string) error {
	v, ok := payload[key]
	if !ok {
		return nil
	}
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	default:
		return fmt.Errorf("%w: %s must be a number", ErrInvalidPayload, key)
	}
	if n < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidPayload, key)
	}
	return nil
}
