package cli

// GetIndexConfig exposes the Firestore index configuration for testing
var GetIndexConfig = getIndexConfig
