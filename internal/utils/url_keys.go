package utils

const (
	// UsernameKey is the key for username used in routing parameters.
	UsernameKey = "username"

	// EntryIdKey is the key for entry ID used in routing parameters.
	EntryIdKey = "entryId"

	// UidKey is the key for the base64-encoded user id in activation links.
	UidKey = "uid"

	// TokenKey is the key for the activation token in activation links.
	TokenKey = "token"

	// CategoryParamKey is the key for category used in query parameters.
	CategoryParamKey = "category"
)
