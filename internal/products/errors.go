package products

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/text/language"

	"github.com/luizgft/produtos-api/internal/i18n"
	"github.com/luizgft/produtos-api/internal/platform/httpx"
)

// Op names the service operation that failed.
type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

var messages = i18n.New()

// checkID rejects identifiers the produtos sequence can never assign.
func checkID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: product id must be positive, got %d", httpx.ErrBadRequest, id)
	}
	return nil
}

// NotFoundError is returned when an identifier is absent from storage.
type NotFoundError struct {
	Op Op
	ID int64
}

func (e *NotFoundError) Error() string {
	return e.Localize(messages, i18n.Default)
}

// Is makes NotFoundError match httpx.ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == httpx.ErrNotFound
}

// Localize renders the message in tag.
func (e *NotFoundError) Localize(tr *i18n.Translator, tag language.Tag) string {
	key := i18n.KeyProductNotFound
	if e.Op == OpDelete {
		key = i18n.KeyProductDeleteNotFound
	}
	return tr.Sprintf(tag, key, strconv.FormatInt(e.ID, 10))
}

// LocalizeError renders NotFoundError details in the request's Accept-Language.
func LocalizeError(tr *i18n.Translator) httpx.Localizer {
	return func(r *http.Request, err error) (string, bool) {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return "", false
		}
		return nf.Localize(tr, tr.Match(r.Header.Get("Accept-Language"))), true
	}
}
