// SPDX-License-Identifier: Apache-2.0

package searchstore

import (
	"errors"
	"fmt"
)

var ErrUnsupportedSearchFieldType = errors.New("unsupported search field type")

type ErrInvalidVectorDimension struct {
	Dimension int
}

func (e ErrInvalidVectorDimension) Error() string {
	return fmt.Sprintf("invalid vector dimension: %d", e.Dimension)
}
