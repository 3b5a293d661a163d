package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：请求或数据问题，客户端修正后可重试
// - 5xxx：系统错误，客户端只能稍后重试
const (
	OK = 0

	InvalidRequest  = 4000 // 请求体或路径参数无法解析
	ResourceMissing = 4004 // 文档不存在（或已删除）
	InvalidSection  = 4022 // 分区内容未通过校验，例如邮箱格式错误

	SystemError   = 5000
	ArchiveFailed = 5003 // 归档任务重试耗尽
)
