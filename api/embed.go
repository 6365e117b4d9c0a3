// Package api 内嵌 OpenAPI 文档
//
// qa.yaml 同时用于 GET /openapi.yaml 对外发布和请求体 Schema 校验
package api

import "embed"

//go:embed openapi/*.yaml
var OpenAPIFS embed.FS

// SpecPath 内嵌文档路径
const SpecPath = "openapi/qa.yaml"

// Spec 返回内嵌 OpenAPI 文档原文
func Spec() ([]byte, error) {
	return OpenAPIFS.ReadFile(SpecPath)
}
