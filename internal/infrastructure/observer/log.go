package observer

import (
	"context"

	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/rs/zerolog"
)

// LogObserver traza los cambios de línea (nivel debug).
type LogObserver struct {
	log zerolog.Logger
}

func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log.With().Str("component", "line_observer").Logger()}
}

func (o *LogObserver) LineChanged(_ context.Context, ev documents.LineEvent) error {
	o.log.Debug().
		Str("kind", string(ev.Kind)).
		Str("document_id", ev.DocumentID).
		Str("type", string(ev.DocType)).
		Str("line_id", ev.Line.ID).
		Str("product_id", ev.Line.ProductID).
		Str("total", ev.Line.Total.StringFixed(2)).
		Msg("línea modificada")
	return nil
}
