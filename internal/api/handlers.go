package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annel0/objectkit/internal/editor"
	"github.com/annel0/objectkit/internal/serializer"
)

// AddBehaviorRequest тело POST .../behaviors
type AddBehaviorRequest struct {
	Type string `json:"type" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// RenameBehaviorRequest тело PATCH .../behaviors/:behavior
type RenameBehaviorRequest struct {
	NewName string `json:"new_name" binding:"required"`
}

// UpdatePropertyRequest тело PUT .../properties/:property.
// Value может быть строкой, числом или булевым значением.
type UpdatePropertyRequest struct {
	Value interface{} `json:"value"`
}

func (rs *RestServer) handleListProjects(c *gin.Context) {
	names, err := rs.editor.ListProjects(c.Request.Context())
	if err != nil {
		rs.respondError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	ok(c, "Проекты", names)
}

func (rs *RestServer) handleListObjects(c *gin.Context) {
	names, err := rs.editor.ListObjects(c.Request.Context(), c.Param("project"))
	if err != nil {
		rs.respondError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	ok(c, "Объекты проекта", names)
}

func (rs *RestServer) handleListBehaviors(c *gin.Context) {
	infos, err := rs.editor.ListBehaviors(c.Request.Context(), c.Param("project"), c.Param("object"))
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, "Поведения объекта", infos)
}

func (rs *RestServer) handleAddBehavior(c *gin.Context) {
	var req AddBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	info, err := rs.editor.AddBehavior(c.Request.Context(), c.Param("project"), c.Param("object"), req.Type, req.Name)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, GenericResponse{Success: true, Message: "Поведение добавлено", Data: info})
}

func (rs *RestServer) handleRemoveBehavior(c *gin.Context) {
	err := rs.editor.RemoveBehavior(c.Request.Context(), c.Param("project"), c.Param("object"), c.Param("behavior"))
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, "Поведение удалено", nil)
}

func (rs *RestServer) handleRenameBehavior(c *gin.Context) {
	var req RenameBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	err := rs.editor.RenameBehavior(c.Request.Context(), c.Param("project"), c.Param("object"), c.Param("behavior"), req.NewName)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, "Поведение переименовано", editor.BehaviorInfo{Name: req.NewName})
}

func (rs *RestServer) handleBehaviorProperties(c *gin.Context) {
	props, err := rs.editor.BehaviorProperties(c.Request.Context(), c.Param("project"), c.Param("object"), c.Param("behavior"))
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, "Свойства поведения", props)
}

func (rs *RestServer) handleBehaviorSchema(c *gin.Context) {
	schema, err := rs.editor.BehaviorSchema(c.Request.Context(), c.Param("project"), c.Param("object"), c.Param("behavior"))
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, "Схема свойств", schema)
}

func (rs *RestServer) handleUpdateProperty(c *gin.Context) {
	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	props, err := rs.editor.UpdateBehaviorProperty(c.Request.Context(),
		c.Param("project"), c.Param("object"), c.Param("behavior"), c.Param("property"),
		editor.EncodeValue(req.Value))
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, "Свойство обновлено", props)
}

// documentFormat читает ?format=, по умолчанию JSON
func documentFormat(c *gin.Context) (serializer.Format, bool) {
	format, err := serializer.ParseFormat(c.Query("format"))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return "", false
	}
	return format, true
}

func (rs *RestServer) handleExportDocument(c *gin.Context) {
	format, valid := documentFormat(c)
	if !valid {
		return
	}

	data, err := rs.editor.ExportDocument(c.Request.Context(), c.Param("project"), format)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), data)
}

func (rs *RestServer) handleImportDocument(c *gin.Context) {
	format, valid := documentFormat(c)
	if !valid {
		return
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, "Не удалось прочитать тело запроса")
		return
	}

	summary, err := rs.editor.ImportDocument(c.Request.Context(), c.Param("project"), data, format)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, "Документ импортирован", summary)
}
