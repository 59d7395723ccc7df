// SPDX-License-Identifier: Apache-2.0

package elasticsearch

import (
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/xataio/esodm/internal/searchstore"
)

// CreateIndexRequest builds the create index request for the given body. The
// request is returned unexecuted, callers run it with their own client.
func CreateIndexRequest(index string, body map[string]any) (*esapi.IndicesCreateRequest, error) {
	reader, err := searchstore.CreateReader(body)
	if err != nil {
		return nil, fmt.Errorf("create index request [%s]: %w", index, err)
	}
	return &esapi.IndicesCreateRequest{
		Index: index,
		Body:  reader,
	}, nil
}
