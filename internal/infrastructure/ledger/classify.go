package ledger

import (
	"encoding/json"
	"net/http"
	"strings"

	domledger "github.com/jhoicas/ledger-sync/internal/domain/ledger"
)

// faultEnvelope cuerpo de error del ledger. encoding/json ignora mayúsculas en las claves,
// así que cubre tanto "Fault/Error" (validación) como "fault/error" (autenticación).
type faultEnvelope struct {
	Fault *struct {
		Type  string       `json:"type"`
		Error []faultError `json:"Error"`
	} `json:"Fault"`
}

type faultError struct {
	Message string `json:"Message"`
	Detail  string `json:"Detail"`
	Code    string `json:"code"`
}

// ClassifyResponse traduce un par (status, body) del ledger al error tipado correspondiente.
// Es el único lugar donde se decide si una respuesta es "nombre duplicado".
//   - 2xx sin Fault → nil
//   - Fault con código 6240 → *DuplicateNameError
//   - cualquier otro caso → *APIError (errors.Is(err, ErrRemoteNotFound) para 404/610)
func ClassifyResponse(status int, body []byte) error {
	var env faultEnvelope
	parsed := json.Unmarshal(body, &env) == nil && env.Fault != nil

	if status >= 200 && status <= 299 && (!parsed || len(env.Fault.Error) == 0) {
		return nil
	}

	if parsed {
		for _, fe := range env.Fault.Error {
			if strings.TrimSpace(fe.Code) == domledger.CodeDuplicateName {
				msg := fe.Detail
				if msg == "" {
					msg = fe.Message
				}
				return &domledger.DuplicateNameError{Message: msg}
			}
		}
		if len(env.Fault.Error) > 0 {
			fe := env.Fault.Error[0]
			return &domledger.APIError{
				StatusCode: status,
				Code:       strings.TrimSpace(fe.Code),
				Message:    fe.Message,
				Detail:     fe.Detail,
			}
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &domledger.APIError{StatusCode: status, Message: msg}
}
