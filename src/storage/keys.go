package storage

// Storage keys. The original client persisted exactly one key.
const KeyAccessToken = "accessToken"
