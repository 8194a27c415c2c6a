package api

import (
	"net/http"

	jobcatalog "hr-backoffice/internal/services/catalog/job-catalog"
	"hr-backoffice/pkg/registry"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listJobs(c *gin.Context) {
	jobs, err := h.svc.Jobs.ListJobs(c.Request.Context())
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *handlers) createJob(c *gin.Context) {
	var input jobcatalog.Input
	if err := h.bindBody(c, registry.JobPayload, &input); err != nil {
		h.errs.Respond(c, err)
		return
	}
	job, err := h.svc.Jobs.CreateJob(c.Request.Context(), &input)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *handlers) getJob(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	job, err := h.svc.Jobs.GetJob(c.Request.Context(), id)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *handlers) updateJob(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	var input jobcatalog.Input
	if err := h.bindBody(c, registry.JobPayload, &input); err != nil {
		h.errs.Respond(c, err)
		return
	}
	job, err := h.svc.Jobs.UpdateJob(c.Request.Context(), id, &input)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *handlers) deleteJob(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	out, err := h.svc.Jobs.DeleteJob(c.Request.Context(), id)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
