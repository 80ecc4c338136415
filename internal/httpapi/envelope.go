// Package httpapi defines the response envelope every endpoint speaks.
// Success bodies nest the payload under _data.data; error bodies carry a
// human-readable cause under _error.cause. Both include _metaData.statusCode.
package httpapi

import (
	"github.com/gin-gonic/gin"
)

type MetaData struct {
	StatusCode int `json:"statusCode"`
}

type DataBody struct {
	Data interface{} `json:"data"`
}

type ErrorBody struct {
	Cause string `json:"cause"`
}

type SuccessEnvelope struct {
	Data     DataBody `json:"_data"`
	MetaData MetaData `json:"_metaData"`
}

type ErrorEnvelope struct {
	Error    ErrorBody `json:"_error"`
	MetaData MetaData  `json:"_metaData"`
}

// PaginatedList is the shape list endpoints nest under _data.data.
type PaginatedList struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"totalPages"`
}

func NewPaginatedList(items interface{}, total int64, page, limit int) PaginatedList {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PaginatedList{
		Data:       items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

func Data(c *gin.Context, code int, payload interface{}) {
	c.JSON(code, SuccessEnvelope{
		Data:     DataBody{Data: payload},
		MetaData: MetaData{StatusCode: code},
	})
}

func Error(c *gin.Context, code int, cause string) {
	c.JSON(code, ErrorEnvelope{
		Error:    ErrorBody{Cause: cause},
		MetaData: MetaData{StatusCode: code},
	})
}

func AbortError(c *gin.Context, code int, cause string) {
	c.AbortWithStatusJSON(code, ErrorEnvelope{
		Error:    ErrorBody{Cause: cause},
		MetaData: MetaData{StatusCode: code},
	})
}
