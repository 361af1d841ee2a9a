package domain

type (
	Email        = string
	UserId       = int64
	DepartmentId = int64
)
