package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
)

func requestView(r *entity.DonationRequest) gin.H {
	v := gin.H{
		"id":              r.ID,
		"requester_name":  r.RequesterName,
		"requester_email": r.RequesterEmail,
		"recipient_name":  r.RecipientName,
		"district":        r.District,
		"upazila":         r.Upazila,
		"hospital_name":   r.HospitalName,
		"full_address":    r.FullAddress,
		"blood_group":     r.BloodGroup,
		"donation_date":   r.DonationDate.Format("2006-01-02"),
		"donation_time":   r.DonationTime,
		"message":         r.Message,
		"status":          r.Status,
		"created_at":      r.CreatedAt,
		"updated_at":      r.UpdatedAt,
	}
	if r.Donor != nil {
		v["donor"] = gin.H{"name": r.Donor.Name, "email": r.Donor.Email}
	}
	return v
}

func requestViews(rs []*entity.DonationRequest) []gin.H {
	out := make([]gin.H, 0, len(rs))
	for _, r := range rs {
		out = append(out, requestView(r))
	}
	return out
}

func userView(u *entity.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"avatar_url":  u.AvatarURL,
		"blood_group": u.BloodGroup,
		"district":    u.District,
		"upazila":     u.Upazila,
		"role":        u.Role,
		"status":      u.Status,
		"created_at":  u.CreatedAt,
		"updated_at":  u.UpdatedAt,
	}
}

// donorView hides role and account status from the public donor search.
func donorView(u *entity.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"avatar_url":  u.AvatarURL,
		"blood_group": u.BloodGroup,
		"district":    u.District,
		"upazila":     u.Upazila,
	}
}

func blogView(b *entity.Blog) gin.H {
	return gin.H{
		"id":            b.ID,
		"title":         b.Title,
		"content":       b.Content,
		"thumbnail_url": b.ThumbnailURL,
		"status":        b.Status,
		"categories":    b.Categories,
		"author_name":   b.AuthorName,
		"author_email":  b.AuthorEmail,
		"created_at":    b.CreatedAt,
		"updated_at":    b.UpdatedAt,
	}
}

func fundView(f *entity.Fund) gin.H {
	return gin.H{
		"id":           f.ID,
		"donor_name":   f.DonorName,
		"donor_email":  f.DonorEmail,
		"amount_cents": f.AmountCents,
		"currency":     f.Currency,
		"created_at":   f.CreatedAt,
	}
}

func pageMeta(page, limit, total int) gin.H {
	return gin.H{"page": page, "limit": limit, "total": total}
}
