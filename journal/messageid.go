package journal

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DeriveMessageID resolves a MESSAGE_ID request. An explicit ID is returned
// verbatim. An automatic one is a name-based (version 3) UUID in the OID
// namespace over "message|level|file|func", as 32 lowercase hex digits, so
// identical events always group under the same identifier.
func DeriveMessageID(req MessageIDRequest, message string, level Level, file, fn string) (string, bool) {
	if req.ID != "" {
		return req.ID, true
	}
	if !req.Auto {
		return "", false
	}
	name := strings.Join([]string{message, strconv.Itoa(int(level)), file, fn}, "|")
	id := uuid.NewMD5(uuid.NameSpaceOID, []byte(name))
	return hex.EncodeToString(id[:]), true
}
