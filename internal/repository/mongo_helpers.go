package repository

import (
	"regexp"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// regexQuote escapes user search input before it is used in a $regex
func regexQuote(s string) string {
	return regexp.QuoteMeta(s)
}

// objectIDs converts hex IDs, failing on the first malformed one
func objectIDs(ids []string) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		oids = append(oids, oid)
	}
	return oids, nil
}
