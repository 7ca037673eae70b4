package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"portal/internal/domain/model"
	"portal/internal/middleware"
	"portal/internal/usecase"
	"portal/internal/validator"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error   string               `json:"error"`
	Code    string               `json:"code,omitempty"`
	Details validator.Violations `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Code: he.Code, Details: he.Details})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: usecase.CodePersistenceFailure})
}

// AuthJWT が詰めた値から Actor を作る
func actorFromContext(c echo.Context) (model.Actor, bool) {
	userID, ok := c.Get(middleware.CtxUserIDKey).(string)
	if !ok || userID == "" {
		return model.Actor{}, false
	}
	role, ok := c.Get(middleware.CtxUserRoleKey).(string)
	if !ok || !model.Role(role).Valid() {
		return model.Actor{}, false
	}
	supplierID, _ := c.Get(middleware.CtxSupplierIDKey).(string)

	return model.Actor{UserID: userID, Role: model.Role(role), SupplierID: supplierID}, true
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: usecase.CodeUnauthorized})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: usecase.CodeBadRequest})
}

// 数値は 12.5 でも "12.5" でも受け付ける。検証は validator 側で行う。
type Num string

func (n *Num) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*n = Num(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = Num(num.String())
	return nil
}

func (n Num) String() string { return string(n) }
