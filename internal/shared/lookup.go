package shared

import "context"

// Existence reports whether a row with the given id exists.
type Existence interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// RequireExists returns a bad request naming label when id does not exist.
func RequireExists(ctx context.Context, e Existence, label string, id int64) error {
	ok, err := e.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return BadRequestf("%s with id=%d not found", label, id)
	}
	return nil
}
