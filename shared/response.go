package shared

import (
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var jsonAPI = sonic.Config{
	UseNumber:            true,
	EscapeHTML:           false,
	SortMapKeys:          false,
	CompactMarshaler:     true,
	NoQuoteTextMarshaler: true,
	NoNullSliceOrMap:     true,
}.Froze()

var (
	successResponse       = mustMarshal(Response{Code: 200, Message: "Success"})
	notFoundResponse      = mustMarshal(Response{Code: 404, Message: "Not Found"})
	unauthorizedResponse  = mustMarshal(Response{Code: 401, Message: "Unauthorized"})
	internalErrorResponse = mustMarshal(Response{Code: 500, Message: "Internal Server Error"})
)

func mustMarshal(v interface{}) []byte {
	b, _ := jsonAPI.Marshal(v)
	return b
}

func ResponseJSON(c *fiber.Ctx, httpCode int, message string, data interface{}) error {
	if data == nil {
		switch {
		case httpCode == 200 && message == "Success":
			return sendRaw(c, httpCode, successResponse)
		case httpCode == 404 && message == "Not Found":
			return sendRaw(c, httpCode, notFoundResponse)
		case httpCode == 401 && message == "Unauthorized":
			return sendRaw(c, httpCode, unauthorizedResponse)
		case httpCode == 500 && message == "Internal Server Error":
			return sendRaw(c, httpCode, internalErrorResponse)
		}
	}

	body, err := jsonAPI.Marshal(Response{
		Code:    httpCode,
		Message: message,
		Data:    data,
	})
	if err != nil {
		return sendRaw(c, fiber.StatusInternalServerError, internalErrorResponse)
	}

	return sendRaw(c, httpCode, body)
}

func sendRaw(c *fiber.Ctx, httpCode int, body []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(httpCode).Send(body)
}

func ResponseOK(c *fiber.Ctx, data interface{}) error {
	return ResponseJSON(c, fiber.StatusOK, "Success", data)
}

func ResponseCreated(c *fiber.Ctx, data interface{}) error {
	return ResponseJSON(c, fiber.StatusCreated, "Created", data)
}

func ResponseNotFound(c *fiber.Ctx) error {
	return ResponseJSON(c, fiber.StatusNotFound, "Not Found", nil)
}

func ResponseUnauthorized(c *fiber.Ctx) error {
	return ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", nil)
}

func ResponseInternalError(c *fiber.Ctx, err error) error {
	return ResponseJSON(c, fiber.StatusInternalServerError, "Internal Server Error", err.Error())
}
