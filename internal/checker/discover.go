package checker

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjmori/vacancywatcher/helpers"
	"sjmori/vacancywatcher/logger"
	"sjmori/vacancywatcher/pkg/errors"
)

// ListingRules drives the listing-page crawl, same data-over-control-flow
// approach as the calendar Rules
type ListingRules struct {
	ItemSelector     string
	NameSelector     string
	NameFallback     string
	CategorySelector string
	PagerSelector    string
	NextSelector     string
	IDPattern        *regexp.Regexp
	ReservationWords []string
	MaxPages         int
}

// ShirakawaListingRules returns the crawl rules for the Shirakawa-go
// association's stay listing
func ShirakawaListingRules() ListingRules {
	return ListingRules{
		ItemSelector:     "div.item",
		NameSelector:     "h5 span.txt",
		NameFallback:     "h5",
		CategorySelector: "span.cate_s",
		PagerSelector:    "div.tmp_pager",
		NextSelector:     "li.next",
		IDPattern:        regexp.MustCompile(`/stay/(\d+)/?`),
		ReservationWords: []string{"reservation", "book", "click here"},
		MaxPages:         5,
	}
}

// Discoverer crawls a paginated listing page into AccommodationRefs and
// resolves each property's reservation deep link. Listing pages are static
// HTML, so a plain fetch suffices here.
type Discoverer struct {
	listingURL string
	rules      Rules
	listing    ListingRules
	pacing     time.Duration
	fetch      func(url string) (io.Reader, error)
}

// NewDiscoverer creates a discoverer for one listing URL
func NewDiscoverer(listingURL string, rules Rules, listing ListingRules, pacing time.Duration) *Discoverer {
	return &Discoverer{
		listingURL: listingURL,
		rules:      rules,
		listing:    listing,
		pacing:     pacing,
		fetch:      helpers.FetchWithRandomHeaders,
	}
}

// Accommodations crawls the listing pages in order, stopping at the pager's
// end, an empty page, or the page bound
func (d *Discoverer) Accommodations(ctx context.Context) ([]AccommodationRef, error) {
	log := logger.ForWorker().WithField("listing_url", d.listingURL)
	var all []AccommodationRef

	for pageNum := 1; pageNum <= d.listing.MaxPages; pageNum++ {
		pageURL, err := d.pageURL(pageNum)
		if err != nil {
			return all, errors.NewDiscovery("discoverer", "bad listing url", err)
		}

		body, err := d.fetch(pageURL)
		if err != nil {
			if pageNum == 1 {
				return nil, errors.NewDiscovery("discoverer", "failed to fetch listing page", err)
			}
			log.Warn().Err(err).Int("page", pageNum).Msg("Listing page fetch failed; stopping pagination")
			break
		}

		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			return all, errors.NewParsing("discoverer", "failed to parse listing page", err)
		}

		refs := d.parseListing(doc, pageURL)
		log.Debug().Int("page", pageNum).Int("found", len(refs)).Msg("Crawled listing page")
		if len(refs) == 0 {
			break
		}
		all = append(all, refs...)

		if doc.Find(d.listing.PagerSelector).Find(d.listing.NextSelector).Length() == 0 {
			break
		}

		// Pace requests to the listing host between pages.
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		case <-time.After(d.pacing):
		}
	}

	log.Info().Int("accommodations", len(all)).Msg("Listing crawl complete")
	return all, nil
}

// ResolveBookingURL finds the reservation deep link on a property page:
// an anchor whose text mentions reservations, or whose href points at a
// known booking host. Properties without one are real (phone-only inns)
// and reported as having no booking system.
func (d *Discoverer) ResolveBookingURL(ctx context.Context, acc AccommodationRef) (string, error) {
	body, err := d.fetch(acc.PageURL)
	if err != nil {
		return "", errors.NewDiscovery("discoverer", "failed to fetch property page", err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", errors.NewParsing("discoverer", "failed to parse property page", err)
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if href == "" {
			return true
		}
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		for _, host := range d.rules.BookingHosts {
			if strings.Contains(href, host) {
				found = href
				return false
			}
		}
		for _, word := range d.listing.ReservationWords {
			if strings.Contains(text, word) {
				found = href
				return false
			}
		}
		return true
	})

	if found == "" {
		return "", nil
	}
	return d.resolveURL(acc.PageURL, found), nil
}

// parseListing extracts accommodation cards from one listing page
func (d *Discoverer) parseListing(doc *goquery.Document, pageURL string) []AccommodationRef {
	var refs []AccommodationRef

	doc.Find(d.listing.ItemSelector).Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		href = d.resolveURL(pageURL, href)

		name := strings.TrimSpace(item.Find(d.listing.NameSelector).First().Text())
		if name == "" {
			name = strings.TrimSpace(item.Find(d.listing.NameFallback).First().Text())
		}
		if name == "" {
			name, _ = item.Find("img").First().Attr("alt")
			name = strings.TrimSpace(name)
		}
		if name == "" {
			name = "Unknown"
		}

		category := strings.TrimSpace(item.Find(d.listing.CategorySelector).First().Text())
		if category == "" {
			category = "Accommodation"
		}

		id := "unknown"
		if m := d.listing.IDPattern.FindStringSubmatch(href); m != nil {
			id = m[1]
		}

		refs = append(refs, AccommodationRef{
			Name:     name,
			ID:       id,
			Category: category,
			PageURL:  href,
		})
	})

	return refs
}

// pageURL appends the page parameter for pages past the first, dropping
// any fragment from the configured URL
func (d *Discoverer) pageURL(pageNum int) (string, error) {
	u, err := url.Parse(d.listingURL)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	if pageNum > 1 {
		q := u.Query()
		q.Set("page", fmt.Sprintf("%d", pageNum))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// resolveURL makes a possibly-relative href absolute against its page
func (d *Discoverer) resolveURL(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	hrefURL, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(hrefURL).String()
}
