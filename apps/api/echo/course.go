package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/365cent/grade-tracker/core/course"
)

type courseApi struct {
	svc *course.Service
}

// CourseworkList is the payload replacing all the coursework of a course.
type CourseworkList struct {
	Coursework []course.Coursework `json:"coursework"`
}

func registerCourseAPI(g *echo.Group, svc *course.Service) {
	api := courseApi{svc: svc}

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.POST("", api.create)

	// detail endpoints
	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/progress", api.progress)
	dg.GET("/coursework", api.queryCoursework)
	dg.POST("/coursework", api.addCoursework)
	dg.PUT("/coursework", api.replaceCoursework)

	wg := g.Group("/coursework/:id")
	wg.PUT("", api.updateCoursework)
	wg.DELETE("", api.destroyCoursework)
	wg.PUT("/grade", api.setGrade)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	summaries, err := api.svc.Overview(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	crs, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	crs, err := api.svc.UpdateCourse(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteCourse(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) progress(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.GetCourse(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting course")
	}
	prog, err := api.svc.CourseProgress(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "computing progress")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *courseApi) queryCoursework(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.GetCourse(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting course")
	}
	items, err := api.svc.QueryCoursework(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying coursework")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *courseApi) addCoursework(ctx echo.Context) error {
	var data course.NewCoursework
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCoursework")
	}
	id := ctx.Param("id")
	if _, err := api.svc.GetCourse(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting course")
	}
	cw, err := api.svc.AddCoursework(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "adding coursework")
	}
	return ctx.JSON(http.StatusCreated, cw)
}

func (api *courseApi) replaceCoursework(ctx echo.Context) error {
	var data CourseworkList
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseworkList")
	}
	items, err := api.svc.ReplaceCourseCoursework(ctx.Request().Context(), ctx.Param("id"), data.Coursework)
	if err != nil {
		return errors.Wrap(err, "replacing coursework")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *courseApi) updateCoursework(ctx echo.Context) error {
	var data course.UpdateCoursework
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCoursework")
	}
	cw, err := api.svc.UpdateCoursework(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating coursework")
	}
	return ctx.JSON(http.StatusOK, cw)
}

func (api *courseApi) destroyCoursework(ctx echo.Context) error {
	if err := api.svc.DeleteCoursework(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting coursework")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// setGrade sets the grade of a coursework; {"grade": null} marks it as not graded yet.
func (api *courseApi) setGrade(ctx echo.Context) error {
	var data course.GradeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeInput")
	}
	cw, err := api.svc.SetGrade(ctx.Request().Context(), ctx.Param("id"), data.Grade)
	if err != nil {
		return errors.Wrap(err, "setting grade")
	}
	return ctx.JSON(http.StatusOK, cw)
}
