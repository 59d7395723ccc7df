// SPDX-License-Identifier: Apache-2.0

package indexname

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name     string
		template string
		data     Data

		wantName string
		wantErr  error
	}{
		{
			name:     "plain name",
			template: "test-index-name",
			wantName: "test-index-name",
		},
		{
			name:     "date suffix",
			template: `events-{{ now | date "2006.01.02" }}`,
			wantName: "events-2024.03.09",
		},
		{
			name:     "model name",
			template: `{{ .Model | snakecase }}-v1`,
			data:     Data{Model: "UserProfile"},
			wantName: "user_profile-v1",
		},
		{
			name:     "empty",
			template: "",
			wantErr:  ErrEmptyName,
		},
		{
			name:     "uppercase",
			template: "Users",
			wantErr:  ErrInvalidName,
		},
		{
			name:     "forbidden character",
			template: "users,orders",
			wantErr:  ErrInvalidName,
		},
		{
			name:     "leading underscore",
			template: "{{ .Model }}",
			data:     Data{Model: "_users"},
			wantErr:  ErrInvalidName,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := NewRenderer(WithClock(clock))
			got, err := r.Render(tc.template, tc.data)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantName, got)
		})
	}
}

func TestRenderer_Render_badTemplate(t *testing.T) {
	t.Parallel()

	_, err := NewRenderer().Render("{{ .Model ", Data{})
	require.Error(t, err)

	_, err = NewRenderer().Render("{{ .Missing }}", Data{})
	require.Error(t, err)
}
