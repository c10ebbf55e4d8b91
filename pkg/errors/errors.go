package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// WithMessage 复制一份 Definition 并替换提示信息，错误码保持不变。
func (d Definition) WithMessage(message string) Definition {
	d.Message = message
	return d
}

// Is 让 errors.Is 按错误码比较，忽略自定义的提示信息。
func (d Definition) Is(target error) bool {
	t, ok := target.(Definition)
	return ok && t.Code == d.Code
}

// 通用错误。
var (
	InvalidInput       = Definition{Code: "INVALID_INPUT", Message: "Invalid input"}
	StorageUnavailable = Definition{Code: "STORAGE_UNAVAILABLE", Message: "Storage unavailable"}
	Timeout            = Definition{Code: "TIMEOUT", Message: "Storage request timed out"}
	TooManyRequests    = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
	Internal           = Definition{Code: "INTERNAL_ERROR", Message: "Internal error"}
)

// 认证相关错误。
var (
	EmailAlreadyExists = Definition{Code: "EMAIL_ALREADY_EXISTS", Message: "Email already exists"}
	InvalidCredentials = Definition{Code: "INVALID_CREDENTIALS", Message: "Invalid credentials"}
	Unauthorized       = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidToken       = Definition{Code: "INVALID_TOKEN", Message: "Invalid token"}
	InvalidUserID      = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	UserNotFound       = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
)

// 联系人模块错误。
var (
	ContactNotFound = Definition{Code: "CONTACT_NOT_FOUND", Message: "Contact not found"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidInput.Code:       InvalidInput,
	StorageUnavailable.Code: StorageUnavailable,
	Timeout.Code:            Timeout,
	TooManyRequests.Code:    TooManyRequests,
	Internal.Code:           Internal,
	EmailAlreadyExists.Code: EmailAlreadyExists,
	InvalidCredentials.Code: InvalidCredentials,
	Unauthorized.Code:       Unauthorized,
	InvalidToken.Code:       InvalidToken,
	InvalidUserID.Code:      InvalidUserID,
	UserNotFound.Code:       UserNotFound,
	ContactNotFound.Code:    ContactNotFound,
}

// Get 根据错误码返回 Definition，若不存在则返回带原错误码的兜底 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
