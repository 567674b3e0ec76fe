package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"
)

const (
	msgMissingFields  = "Please fill all required fields"
	msgInvalidBody    = "Invalid request body"
	msgInvalidID      = "Invalid id"
	msgUserNotFound   = "User not found"
	msgInternalError  = "Internal server error"
	maxRequestBodyLen = 1 << 20
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var errMissingFields = errors.New("missing required fields")

// decodeRequest decodes a JSON body into v, rejecting unknown fields and trailing
// data, then checks validate tags. Missing required fields yield errMissingFields.
func decodeRequest(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyLen))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return errMissingFields
		}
		return err
	}
	return nil
}

// writeDecodeError maps a decodeRequest failure to a 400 response.
func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errMissingFields) {
		http.Error(w, msgMissingFields, http.StatusBadRequest)
		return
	}
	http.Error(w, msgInvalidBody, http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// internalError logs err and replies with an opaque 500.
func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	hlog.FromRequest(r).Error().Err(err).Str("op", op).Msg("request failed")
	http.Error(w, msgInternalError, http.StatusInternalServerError)
}
