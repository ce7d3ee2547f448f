// server/internal/requisition/codegen.go
package requisition

import (
	"fmt"
	"time"
)

const codePrefix = "REQ"

// DayKey devuelve la clave de calendario usada por el contador diario.
func DayKey(t time.Time) string {
	return t.Format("20060102")
}

// FormatCode arma el código legible de una requisición: REQ-YYYYMMDD-NNNN.
// La secuencia es base 1 por día; pasado 9999 el número simplemente usa más
// dígitos, no hay tope.
func FormatCode(day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", codePrefix, DayKey(day), seq)
}
