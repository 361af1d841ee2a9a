package domain

import "time"

type Department struct {
	Id        DepartmentId `json:"id"`
	Name      string       `json:"name"`
	Code      string       `json:"code"`
	CreatedAt time.Time    `json:"created_at"`
}
