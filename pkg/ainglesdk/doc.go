// Package ainglesdk bootstraps an AIngle client from environment variables.
// AINGLE_RUNTIME_MODE selects between "http" (talk to a real node at
// AINGLE_NODE_URL / AINGLE_WS_URL) and "mock" (an in-memory node, optionally
// seeded from the JSON file named by AINGLE_MOCK_SEED); "auto" picks http
// whenever a node URL is present. The mock remains API compatible with the
// HTTP client, including Subscribe.
package ainglesdk
