package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppliers_Validate(t *testing.T) {
	tests := []struct {
		name    string
		applier Applier
		op      Operation
		payload map[string]any
		wantErr bool
	}{
		{name: "work order create", applier: WorkOrderApplier{}, op: OperationCreate, payload: map[string]any{"title": "Fix", "priority": "high"}},
		{name: "work order create without title", applier: WorkOrderApplier{}, op: OperationCreate, payload: map[string]any{}, wantErr: true},
		{name: "work order bad status", applier: WorkOrderApplier{}, op: OperationUpdate, payload: map[string]any{"status": "done"}, wantErr: true},
		{name: "work order partial update", applier: WorkOrderApplier{}, op: OperationUpdate, payload: map[string]any{"notes": "x"}},
		{name: "asset create", applier: AssetApplier{}, op: OperationCreate, payload: map[string]any{"name": "Boiler"}},
		{name: "asset name must be string", applier: AssetApplier{}, op: OperationCreate, payload: map[string]any{"name": 5}, wantErr: true},
		{name: "inventory negative quantity", applier: InventoryItemApplier{}, op: OperationUpdate, payload: map[string]any{"quantity": -1.0}, wantErr: true},
		{name: "inventory quantity not number", applier: InventoryItemApplier{}, op: OperationUpdate, payload: map[string]any{"quantity": "ten"}, wantErr: true},
		{name: "inventory ok", applier: InventoryItemApplier{}, op: OperationCreate, payload: map[string]any{"sku": "F-10", "quantity": 3.0}},
		{name: "permit status", applier: PermitApplier{}, op: OperationUpdate, payload: map[string]any{"status": "approved"}},
		{name: "permit bad status", applier: PermitApplier{}, op: OperationUpdate, payload: map[string]any{"status": "maybe"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.applier.Validate(tt.op, tt.payload)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPayload)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
