// SPDX-License-Identifier: Apache-2.0

package opensearch

import (
	"fmt"

	"github.com/opensearch-project/opensearch-go/opensearchapi"

	"github.com/xataio/esodm/internal/searchstore"
)

// CreateIndexRequest builds the create index request for the given body. The
// request is returned unexecuted, callers run it with their own client.
func CreateIndexRequest(index string, body map[string]any) (*opensearchapi.IndicesCreateRequest, error) {
	reader, err := searchstore.CreateReader(body)
	if err != nil {
		return nil, fmt.Errorf("create index request [%s]: %w", index, err)
	}
	return &opensearchapi.IndicesCreateRequest{
		Index: index,
		Body:  reader,
	}, nil
}
