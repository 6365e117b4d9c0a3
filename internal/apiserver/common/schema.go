package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"qa-server/api"
)

// MaxBodyBytes 请求体大小上限
const MaxBodyBytes = 1 << 20

// Schemas 请求体校验器，Schema 取自 OpenAPI 文档 components.schemas
type Schemas struct {
	doc *openapi3.T
}

// LoadSchemas 解析并校验 OpenAPI 文档
func LoadSchemas(ctx context.Context, data []byte) (*Schemas, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return &Schemas{doc: doc}, nil
}

// EmbeddedSchemas 加载内嵌的 api/openapi/qa.yaml
func EmbeddedSchemas(ctx context.Context) (*Schemas, error) {
	data, err := api.Spec()
	if err != nil {
		return nil, fmt.Errorf("read embedded openapi document: %w", err)
	}
	return LoadSchemas(ctx, data)
}

// Has 是否存在指定名称的 Schema
func (s *Schemas) Has(name string) bool {
	if s == nil || s.doc.Components == nil {
		return false
	}
	ref, ok := s.doc.Components.Schemas[name]
	return ok && ref != nil && ref.Value != nil
}

// Validate 用指定 Schema 校验已解码的 JSON 值
//
// 校验失败返回 Validation 错误，字段名取 JSON Pointer 的第一段
func (s *Schemas) Validate(name string, value interface{}) error {
	if s == nil {
		return nil
	}
	ref, ok := s.doc.Components.Schemas[name]
	if !ok || ref.Value == nil {
		return Internal(fmt.Errorf("schema %q not found", name))
	}
	err := ref.Value.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var schemaErrs []*openapi3.SchemaError
	collectSchemaErrors(err, &schemaErrs)
	if len(schemaErrs) == 0 {
		return FieldError(NonFieldErrors, err.Error())
	}

	fields := FieldErrors{}
	for _, se := range schemaErrs {
		field := NonFieldErrors
		if ptr := se.JSONPointer(); len(ptr) > 0 {
			field = ptr[0]
		}
		fields.Add(field, schemaMessage(se))
	}
	return fields.Err()
}

func collectSchemaErrors(err error, out *[]*openapi3.SchemaError) {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			collectSchemaErrors(inner, out)
		}
	case *openapi3.SchemaError:
		*out = append(*out, e)
	}
}

// schemaMessage 将 Schema 约束名转换为面向用户的错误信息
func schemaMessage(se *openapi3.SchemaError) string {
	switch se.SchemaField {
	case "required":
		return "this field is required"
	case "maxLength":
		if se.Schema != nil && se.Schema.MaxLength != nil {
			return fmt.Sprintf("ensure this field has no more than %d characters", *se.Schema.MaxLength)
		}
	case "minLength":
		return "this field may not be blank"
	case "minItems":
		return "this list may not be empty"
	case "pattern":
		return "enter a valid value"
	case "type":
		if se.Schema != nil && se.Schema.Type != nil && len(*se.Schema.Type) > 0 {
			return fmt.Sprintf("expected a value of type %s", (*se.Schema.Type)[0])
		}
	case "additionalProperties":
		return "unknown field"
	}
	return se.Reason
}

// DecodeBody 读取请求体，按 schema 校验后解码到 dst
//
// schemas 为 nil 时跳过 Schema 校验；空请求体按 {} 处理
func DecodeBody(r *http.Request, schemas *Schemas, schema string, dst interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return BadRequest("failed to read request body")
	}
	if len(data) > MaxBodyBytes {
		return BadRequest("request body too large")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		data = []byte("{}")
	}

	if schemas != nil {
		var generic interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return BadRequest("invalid JSON: " + err.Error())
		}
		if err := schemas.Validate(schema, generic); err != nil {
			return err
		}
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return BadRequest("invalid request body: " + err.Error())
	}
	return nil
}
