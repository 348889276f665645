package code

import "net/http"

// 成功状态码
var (
	Success        = NewSuss(200, http.StatusOK, lang{"Success", "成功"})
	SuccessCreated = NewSuss(201, http.StatusCreated, lang{"Created", "创建成功"})
)

// 通用错误码
var (
	ErrorInvalidParams        = NewError(10001, http.StatusBadRequest, lang{"Invalid request parameters", "入参错误"})
	ErrorNotUserAuthToken     = NewError(10002, http.StatusUnauthorized, lang{"Authorization token required", "缺少用户认证令牌"})
	ErrorInvalidUserAuthToken = NewError(10003, http.StatusUnauthorized, lang{"Invalid or expired authorization token", "用户认证令牌无效或已过期"})
	ErrorServerInternal       = NewError(10004, http.StatusInternalServerError, lang{"Internal server error", "服务内部错误"})
	ErrorTooManyRequests      = NewError(10005, http.StatusTooManyRequests, lang{"Too many requests", "请求过于频繁"})
	ErrorRequestTimeout       = NewError(10006, http.StatusRequestTimeout, lang{"Request timeout", "请求超时"})
	ErrorNotFoundAPI          = NewError(10007, http.StatusNotFound, lang{"API route not found", "接口不存在"})
	ErrorDatabase             = NewError(10008, http.StatusInternalServerError, lang{"Database error", "数据库错误"})
)

// 用户相关错误码
var (
	ErrorUserRegisterDisabled = NewError(20001, http.StatusForbidden, lang{"User registration is disabled", "用户注册已关闭"})
	ErrorUserEmailExists      = NewError(20002, http.StatusBadRequest, lang{"Email is already registered", "邮箱已被注册"})
	ErrorUserNotFound         = NewError(20003, http.StatusNotFound, lang{"User not found", "用户不存在"})
	ErrorUserPasswordWrong    = NewError(20004, http.StatusBadRequest, lang{"Incorrect email or password", "邮箱或密码错误"})
	ErrorUserCreateFail       = NewError(20005, http.StatusInternalServerError, lang{"Failed to create user", "创建用户失败"})
)

// 笔记相关错误码
var (
	ErrorNoteNotFound          = NewError(30001, http.StatusNotFound, lang{"Note not found", "笔记不存在"})
	ErrorNoteForbidden         = NewError(30002, http.StatusForbidden, lang{"You do not have permission to access this note", "没有访问该笔记的权限"})
	ErrorNoteTitleRequired     = NewError(30003, http.StatusBadRequest, lang{"Note title is required", "笔记标题不能为空"})
	ErrorNotePermissionInvalid = NewError(30004, http.StatusBadRequest, lang{"Permission must be 'read' or 'write'", "权限必须为 read 或 write"})
	ErrorNoteGetFail           = NewError(30005, http.StatusInternalServerError, lang{"Failed to fetch note", "获取笔记失败"})
	ErrorNoteListFail          = NewError(30006, http.StatusInternalServerError, lang{"Failed to fetch notes", "获取笔记列表失败"})
	ErrorNoteCreateFail        = NewError(30007, http.StatusInternalServerError, lang{"Failed to create note", "创建笔记失败"})
	ErrorNoteUpdateFail        = NewError(30008, http.StatusInternalServerError, lang{"Failed to update note", "更新笔记失败"})
	ErrorNoteDeleteFail        = NewError(30009, http.StatusInternalServerError, lang{"Failed to delete note", "删除笔记失败"})
	ErrorNoteShareFail         = NewError(30010, http.StatusInternalServerError, lang{"Failed to share note", "分享笔记失败"})
	ErrorShareTargetNotFound   = NewError(30011, http.StatusNotFound, lang{"Share target user not found", "目标用户不存在"})
	ErrorNoteArchiveFail       = NewError(30012, http.StatusInternalServerError, lang{"Failed to change archive state", "修改归档状态失败"})
)
