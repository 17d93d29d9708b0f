package models

import "time"

type HealthCheck struct {
	Status    string            `json:"status"`
	Uptime    string            `json:"uptime"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

type QueueStats struct {
	Name      string `json:"name"`
	Pending   int    `json:"pending"`
	Consumers int    `json:"consumers"`
}
