package v1handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"mailguard/pkg/logger"
	"mailguard/pkg/serrors"
)

// maxFormBytes bounds the size of a submitted form.
const maxFormBytes = 64 << 10

// ValidateEmail is the form action hook of the registration and profile
// update flows. It answers 200 when the submitted email may be used and 422
// with field errors otherwise.
func (h *Handler) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	if !h.realmServed(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.NewError(r.Context(), serrors.Wrap(serrors.ErrBadRequest, err, "could not read form")).Write(w)

		return
	}

	res := h.deps.Validator.ValidateForm(r.Context(), r.PostForm)
	status := http.StatusOK
	if !res.Valid {
		status = http.StatusUnprocessableEntity
		logger.Info(r.Context(), "registration email rejected", zap.Int("errors", len(res.Errors)))
	}

	writeJSON(w, status, func(enc *jx.Encoder) {
		enc.ObjStart()
		enc.FieldStart("valid")
		enc.Bool(res.Valid)
		if len(res.Errors) > 0 {
			enc.FieldStart("errors")
			enc.ArrStart()
			for _, fe := range res.Errors {
				enc.ObjStart()
				enc.FieldStart("field")
				enc.Str(fe.Field)
				enc.FieldStart("message")
				enc.Str(fe.Message)
				enc.ObjEnd()
			}
			enc.ArrEnd()
		}
		enc.ObjEnd()
	})
}
