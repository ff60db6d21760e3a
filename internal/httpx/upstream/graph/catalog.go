package graph

import (
	"context"
	"fmt"

	"github.com/vadim/meta-bridge/internal/domain/catalog/entity"
)

// CatalogLoader builds catalog snapshots from the Graph API
type CatalogLoader struct {
	client *Client
}

// NewCatalogLoader creates a new catalog loader
func NewCatalogLoader(client *Client) *CatalogLoader {
	return &CatalogLoader{client: client}
}

// LoadCatalog fetches the user's pages, groups and business managers and
// normalizes them into one catalog snapshot
func (l *CatalogLoader) LoadCatalog(ctx context.Context, userID, accessToken string) (*entity.Catalog, error) {
	cat := &entity.Catalog{UserID: userID}

	pages, err := l.client.GetUserPages(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("loading personal pages: %w", err)
	}
	for _, p := range pages {
		cat.PersonalPages = append(cat.PersonalPages, pageTarget(p, entity.TargetOriginPersonal))
	}

	groups, err := l.client.GetUserGroups(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("loading personal groups: %w", err)
	}
	for _, g := range groups {
		cat.PersonalGroups = append(cat.PersonalGroups, groupTarget(g, entity.TargetOriginPersonal))
	}

	businesses, err := l.client.GetUserBusinesses(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("loading businesses: %w", err)
	}

	for _, b := range businesses {
		mgr := entity.BusinessManager{
			ID:                 b.ID,
			Name:               b.Name,
			VerificationStatus: b.VerificationStatus,
		}

		ownedPages, err := l.client.GetBusinessPages(ctx, b.ID, accessToken)
		if err != nil {
			return nil, fmt.Errorf("loading pages of business %s: %w", b.ID, err)
		}
		for _, p := range ownedPages {
			mgr.Pages = append(mgr.Pages, pageTarget(p, entity.TargetOriginBusiness))

			pageToken := p.AccessToken
			if pageToken == "" {
				pageToken = accessToken
			}

			pageGroups, err := l.client.GetPageGroups(ctx, p.ID, pageToken)
			if err == nil {
				for _, g := range pageGroups {
					mgr.Groups = append(mgr.Groups, groupTarget(g, entity.TargetOriginBusiness))
				}
			}

			ig, err := l.client.GetPageInstagramAccount(ctx, p.ID, pageToken)
			if err == nil && ig != nil {
				mgr.InstagramAccounts = append(mgr.InstagramAccounts, instagramTarget(*ig, pageToken))
			}
		}

		cat.BusinessManagers = append(cat.BusinessManagers, mgr)
	}

	return cat, nil
}

// RelatedPlatforms returns the platforms linked to a primary page: its
// Instagram business account (pre-selected) and the groups it can publish to
func (l *CatalogLoader) RelatedPlatforms(ctx context.Context, pageID, pageToken string) ([]entity.Suggestion, error) {
	var suggestions []entity.Suggestion

	ig, err := l.client.GetPageInstagramAccount(ctx, pageID, pageToken)
	if err != nil {
		return nil, fmt.Errorf("loading linked instagram account: %w", err)
	}
	if ig != nil {
		suggestions = append(suggestions, entity.Suggestion{
			Target:   instagramTarget(*ig, pageToken),
			Selected: true,
			Reason:   "instagram account linked to this page",
		})
	}

	groups, err := l.client.GetPageGroups(ctx, pageID, pageToken)
	if err != nil {
		// Group listing needs a permission some pages lack; the Instagram
		// suggestion is still useful on its own
		return suggestions, nil
	}
	for _, g := range groups {
		suggestions = append(suggestions, entity.Suggestion{
			Target: groupTarget(g, entity.TargetOriginBusiness),
			Reason: "group accessible from this page",
		})
	}

	return suggestions, nil
}

func pageTarget(p PageData, origin entity.TargetOrigin) entity.PlatformTarget {
	t := entity.NewTarget(p.ID, p.Name, entity.TargetKindPage, origin)
	t.Category = p.Category
	t.FollowerCount = p.FollowerCount
	t.AccessToken = p.AccessToken
	return t
}

func groupTarget(g GroupData, origin entity.TargetOrigin) entity.PlatformTarget {
	t := entity.NewTarget(g.ID, g.Name, entity.TargetKindGroup, origin)
	t.Privacy = g.Privacy
	t.MemberCount = g.MemberCount
	return t
}

func instagramTarget(ig InstagramAccountData, pageToken string) entity.PlatformTarget {
	t := entity.NewTarget(ig.ID, ig.Username, entity.TargetKindInstagram, entity.TargetOriginBusiness)
	t.FollowerCount = ig.FollowerCount
	t.AccessToken = pageToken
	return t
}
