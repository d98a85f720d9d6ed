package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mentorhub/forum/config"
	"github.com/mentorhub/forum/middleware"
	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/services"
	"github.com/mentorhub/forum/utils"
)

// ForumController serves the read paths and author-initiated writes.
type ForumController struct {
	forum *services.ForumService
}

// NewForumController creates a new ForumController instance.
func NewForumController(forum *services.ForumService) *ForumController {
	return &ForumController{forum: forum}
}

// ListCategories returns the readable categories with live post counts.
func (f *ForumController) ListCategories(ctx *gin.Context) {
	caller := middleware.CurrentIdentity(ctx)
	items, err := f.forum.CategoryOverview(ctx.Request.Context(), caller.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// ListPosts returns a page of posts the caller may read.
func (f *ForumController) ListPosts(ctx *gin.Context) {
	caller := middleware.CurrentIdentity(ctx)
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	category := strings.TrimSpace(ctx.Query("category"))

	res, err := f.forum.ListPosts(ctx.Request.Context(), caller.Role, category, services.Page{Page: page, PageSize: pageSize})
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"items": res.Items,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
			"total":     res.Total,
		},
	})
}

// GetPost returns a single readable post.
func (f *ForumController) GetPost(ctx *gin.Context) {
	caller := middleware.CurrentIdentity(ctx)
	post, err := f.forum.GetPost(ctx.Request.Context(), caller.Role, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// CreatePost publishes a new post for the authenticated caller.
func (f *ForumController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title      string `json:"title" binding:"required"`
		Content    string `json:"content" binding:"required"`
		Category   string `json:"category" binding:"required,forum_category"`
		Visibility string `json:"visibility" binding:"omitempty,forum_visibility"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	post, err := f.forum.CreatePost(ctx.Request.Context(), middleware.CurrentIdentity(ctx), services.CreatePostInput{
		Category:   req.Category,
		Visibility: req.Visibility,
		Title:      req.Title,
		Content:    req.Content,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"post": post})
}

// CreateReply appends a reply to a post.
func (f *ForumController) CreateReply(ctx *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	post, err := f.forum.CreateReply(ctx.Request.Context(), ctx.Param("id"), middleware.CurrentIdentity(ctx), req.Message)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"post": post})
}

// ToggleUpvote flips the caller's upvote.
func (f *ForumController) ToggleUpvote(ctx *gin.Context) {
	upvoted, count, err := f.forum.ToggleUpvote(ctx.Request.Context(), ctx.Param("id"), middleware.CurrentIdentity(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"upvoted": upvoted, "upvotes": count})
}

// ReportPost flags a post for moderators.
func (f *ForumController) ReportPost(ctx *gin.Context) {
	post, err := f.forum.ReportPost(ctx.Request.Context(), ctx.Param("id"), middleware.CurrentIdentity(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"reported": true, "report_count": post.ReportCount})
}

// Permissions reports what the caller may do with a post through this surface.
func (f *ForumController) Permissions(ctx *gin.Context) {
	d, err := f.forum.CanManage(ctx.Request.Context(), ctx.Param("id"), middleware.CurrentIdentity(ctx), middleware.Origin(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"permissions": d})
}

// UpdatePost applies a partial edit to the caller's own post.
func (f *ForumController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Title      *string `json:"title"`
		Content    *string `json:"content"`
		Visibility *string `json:"visibility" binding:"omitempty,forum_visibility"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	edit := services.PostEdit{Title: req.Title, Content: req.Content}
	if req.Visibility != nil {
		v, _ := models.ParseVisibility(*req.Visibility)
		edit.Visibility = &v
	}

	post, err := f.forum.EditPost(ctx.Request.Context(), ctx.Param("id"), middleware.CurrentIdentity(ctx), middleware.Origin(ctx), edit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost soft-deletes the caller's own post.
func (f *ForumController) DeletePost(ctx *gin.Context) {
	if err := f.forum.DeletePost(ctx.Request.Context(), ctx.Param("id"), middleware.CurrentIdentity(ctx), middleware.Origin(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// DeleteReply soft-deletes the caller's own reply.
func (f *ForumController) DeleteReply(ctx *gin.Context) {
	err := f.forum.DeleteReply(ctx.Request.Context(), ctx.Param("id"), ctx.Param("replyId"),
		middleware.CurrentIdentity(ctx), middleware.Origin(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "reply deleted"})
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	maxSize := config.Get().MaxPageSize
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= maxSize {
		pageSize = s
	}
	return page, pageSize
}
