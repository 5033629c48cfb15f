package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/cropledger/internal/domain/models"
)

func TestScopeFilter(t *testing.T) {
	tests := []struct {
		name  string
		scope models.Scope
		want  bson.M
	}{
		{"empty", models.Scope{}, bson.M{}},
		{
			"both bounds",
			models.Scope{
				From: time.Date(2024, time.March, 1, 15, 4, 0, 0, time.UTC),
				To:   time.Date(2024, time.March, 31, 8, 0, 0, 0, time.UTC),
			},
			bson.M{"date": bson.M{
				"$gte": time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
				"$lt":  time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			}},
		},
		{
			"locations are not pushed down",
			models.Scope{Locations: []string{"A"}, Crops: []string{"Tomate"}},
			bson.M{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScopeFilter(tt.scope))
		})
	}
}
