package mongo

import (
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// isDuplicateOn reports whether err is a duplicate key violation of the named
// unique index.
func isDuplicateOn(err error, index string) bool {
	return mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), "index: "+index+" ")
}
