// SPDX-License-Identifier: ice License 1.0

package terror

type (
	// Err is an error enriched with arbitrary structured data, so that callers
	// logging it (or mapping it to a wire format) do not have to parse messages.
	Err struct {
		error
		Data map[string]any `json:"data"`
	}
)
