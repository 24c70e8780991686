package world

import (
	"fmt"

	"github.com/Sunlight4/subterranea/internal/logging"
)

// invariantViolation сообщает о нарушении внутреннего инварианта.
// В сборке с тегом debug паникует, иначе только пишет в лог.
func invariantViolation(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logging.Error("нарушение инварианта: %s", msg)
	if debugAssertions {
		panic("world: " + msg)
	}
}
