package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applytrack/pkg/models"
)

func TestStatusValidators(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     interface{}
		wantErr bool
	}{
		{"known status", models.UpdateApplicationStatusRequest{Status: models.StatusOffer}, false},
		{"unknown status", models.UpdateApplicationStatusRequest{Status: "archived"}, true},
		{"missing status", models.UpdateApplicationStatusRequest{}, true},
		{"draft entry", models.CreateApplicationRequest{UserID: "u", ResumeID: "r", JobDescriptionID: "j", Status: models.StatusDraft}, false},
		{"empty entry defaults later", models.CreateApplicationRequest{UserID: "u", ResumeID: "r", JobDescriptionID: "j"}, false},
		{"interview entry", models.CreateApplicationRequest{UserID: "u", ResumeID: "r", JobDescriptionID: "j", Status: models.StatusInterview}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDescribeUsesJSONNames(t *testing.T) {
	v := New()
	over := 120
	err := v.Struct(models.BulkAutoApplyRequest{ResumeID: "r", MatchThreshold: &over})
	require.Error(t, err)

	msg := Describe(err)
	assert.Contains(t, msg, "userId is required")
	assert.Contains(t, msg, "matchThreshold must be max 100")
}

