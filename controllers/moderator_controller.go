package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mentorhub/forum/middleware"
	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/services"
	"github.com/mentorhub/forum/utils"
)

// ModeratorController serves the moderation surface and the admin console.
type ModeratorController struct {
	forum      *services.ForumService
	moderators *services.ModeratorRegistry
}

// NewModeratorController creates a new ModeratorController instance.
func NewModeratorController(svc *services.Service) *ModeratorController {
	return &ModeratorController{forum: svc.Forum, moderators: svc.Moderators}
}

// Me returns the caller's active grant, if any.
func (m *ModeratorController) Me(ctx *gin.Context) {
	caller := middleware.CurrentIdentity(ctx)
	grant, err := m.moderators.ActiveGrant(ctx.Request.Context(), caller.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"is_moderator": grant != nil || caller.Role == models.RoleAdmin,
		"grant":        grant,
	})
}

// ListPosts returns every live post in the caller's moderated categories.
func (m *ModeratorController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	reported, _ := strconv.ParseBool(ctx.DefaultQuery("reported", "false"))

	posts, err := m.moderators.ListModeratedContent(ctx.Request.Context(), middleware.CurrentIdentity(ctx), services.ModeratedListOptions{
		ReportedOnly: reported,
		Limit:        pageSize,
		Offset:       (page - 1) * pageSize,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"items": posts,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// DeletePost soft-deletes a post in a moderated category.
func (m *ModeratorController) DeletePost(ctx *gin.Context) {
	post, err := m.moderators.ModeratorDelete(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Param("id"), "")
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "post deleted", "deleted_by": post.DeletedBy})
}

// DeleteReply soft-deletes a reply on a post in a moderated category.
func (m *ModeratorController) DeleteReply(ctx *gin.Context) {
	_, err := m.moderators.ModeratorDelete(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Param("id"), ctx.Param("replyId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "reply deleted"})
}

// ListModerators returns grants; ?active=1 hides revoked ones.
func (m *ModeratorController) ListModerators(ctx *gin.Context) {
	activeOnly, _ := strconv.ParseBool(ctx.DefaultQuery("active", "false"))
	items, err := m.moderators.List(ctx.Request.Context(), middleware.CurrentIdentity(ctx), activeOnly)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// AssignModerator creates or replaces the grant for :userId.
func (m *ModeratorController) AssignModerator(ctx *gin.Context) {
	var req struct {
		UserName   string   `json:"user_name"`
		Role       string   `json:"role" binding:"required,oneof=student mentor"`
		Categories []string `json:"categories" binding:"required,min=1,dive,forum_category"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	grant, err := m.moderators.Assign(ctx.Request.Context(), middleware.CurrentIdentity(ctx), services.AssignRequest{
		UserID:     ctx.Param("userId"),
		UserName:   req.UserName,
		Role:       models.ParseRole(req.Role),
		Categories: req.Categories,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"moderator": grant})
}

// RevokeModerator deactivates the grant for :userId.
func (m *ModeratorController) RevokeModerator(ctx *gin.Context) {
	grant, err := m.moderators.Revoke(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Param("userId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if grant == nil {
		utils.Error(ctx, http.StatusNotFound, 40403, services.ReasonModeratorNotFound)
		return
	}
	utils.Success(ctx, gin.H{"moderator": grant})
}

// AuditPost returns a post with deleted content for administrators.
func (m *ModeratorController) AuditPost(ctx *gin.Context) {
	post, err := m.forum.AuditGetPost(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}
