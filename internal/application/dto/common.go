package dto

// LogQuery parámetros de GET /api/ledger/logs.
type LogQuery struct {
	Entity string `query:"entity" validate:"omitempty,oneof=customers vendors"`
	Limit  int    `query:"limit" validate:"min=0,max=200"`
}

// DefaultLimit aplica el valor por defecto si Limit es cero.
func (q *LogQuery) DefaultLimit() {
	if q.Limit <= 0 {
		q.Limit = 20
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
