package models

import "time"

// AnalyticsReport represents the aggregated analytics snapshot stored in MongoDB.
type AnalyticsReport struct {
	ID           string           `bson:"_id" json:"id"`
	Scope        Scope            `bson:"scope" json:"scope"`
	KPIs         KPISet           `bson:"kpis" json:"kpis"`
	ByLocation   []GroupRow       `bson:"by_location" json:"by_location"`
	ByCrop       []GroupRow       `bson:"by_crop" json:"by_crop"`
	Balance      FinancialBalance `bson:"balance" json:"balance"`
	Correlations CorrelationMap   `bson:"correlations" json:"correlations"`
	Forecast     ForecastResult   `bson:"forecast" json:"forecast"`
	Summary      string           `bson:"summary" json:"summary"`
	CreatedAt    time.Time        `bson:"created_at" json:"created_at"`
}
