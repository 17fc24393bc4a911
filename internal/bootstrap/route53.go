package bootstrap

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	chordconfig "chorddht/internal/config"
	"chorddht/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
)

// Route53Bootstrap discovers ring members by listing SRV records under
// a domain suffix in an AWS Route53 hosted zone, and advertises this
// node's own presence the same way.
type Route53Bootstrap struct {
	client       *route53.Client
	hostedZoneID string
	domainSuffix string
	ttl          int64
}

// NewRoute53Bootstrap builds a Route53Bootstrap from cfg, loading AWS
// credentials from the default provider chain.
func NewRoute53Bootstrap(cfg chordconfig.Route53Config) (*Route53Bootstrap, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Route53Bootstrap{
		client:       client,
		hostedZoneID: cfg.HostedZoneID,
		domainSuffix: strings.TrimSuffix(cfg.DomainSuffix, "."),
		ttl:          cfg.TTL,
	}, nil
}

func newClient(ctx context.Context) (*route53.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return route53.NewFromConfig(awsCfg), nil
}

// Discover queries Route53 for SRV records under the configured
// domain suffix and resolves each target host to its current IPs.
func (r *Route53Bootstrap) Discover(ctx context.Context) ([]string, error) {
	var endpoints []string
	input := &route53.ListResourceRecordSetsInput{
		HostedZoneId: aws.String(r.hostedZoneID),
	}
	paginator := route53.NewListResourceRecordSetsPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list records: %w", err)
		}
		for _, rrset := range page.ResourceRecordSets {
			if rrset.Type != "SRV" {
				continue
			}
			if !strings.HasSuffix(strings.TrimSuffix(*rrset.Name, "."), r.domainSuffix) {
				continue
			}

			for _, rr := range rrset.ResourceRecords {
				var prio, weight, port int
				var target string
				_, err := fmt.Sscanf(*rr.Value, "%d %d %d %s", &prio, &weight, &port, &target)
				if err != nil {
					continue
				}
				target = strings.TrimSuffix(target, ".")

				ips, err := net.LookupHost(target)
				if err != nil {
					continue
				}
				for _, ip := range ips {
					endpoints = append(endpoints, fmt.Sprintf("%s:%d", ip, port))
				}
			}
		}
	}

	return endpoints, nil
}

// recordName derives the SRV record name advertised for self: its ring
// id, under the configured domain suffix.
func (r *Route53Bootstrap) recordName(self domain.Peer) string {
	return fmt.Sprintf("%s.%s.", self.ID.String(), r.domainSuffix)
}

// Register creates or updates the SRV record advertising self.
func (r *Route53Bootstrap) Register(ctx context.Context, self domain.Peer) error {
	host, port, err := net.SplitHostPort(self.Addr)
	if err != nil {
		return err
	}
	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(r.hostedZoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{
					Action: types.ChangeActionUpsert,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name: aws.String(r.recordName(self)),
						Type: types.RRTypeSrv,
						TTL:  aws.Int64(r.ttl),
						ResourceRecords: []types.ResourceRecord{
							{
								// priority weight port target, priority and weight unused
								Value: aws.String(fmt.Sprintf("0 0 %s %s.", port, host)),
							},
						},
					},
				},
			},
		},
	}
	_, err = r.client.ChangeResourceRecordSets(ctx, input)
	return err
}

// Deregister removes the SRV record advertising self.
func (r *Route53Bootstrap) Deregister(ctx context.Context, self domain.Peer) error {
	host, port, err := net.SplitHostPort(self.Addr)
	if err != nil {
		return err
	}
	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(r.hostedZoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{
					Action: types.ChangeActionDelete,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name: aws.String(r.recordName(self)),
						Type: types.RRTypeSrv,
						TTL:  aws.Int64(r.ttl),
						ResourceRecords: []types.ResourceRecord{
							{
								Value: aws.String(fmt.Sprintf("0 0 %s %s.", port, host)),
							},
						},
					},
				},
			},
		},
	}
	_, err = r.client.ChangeResourceRecordSets(ctx, input)
	return err
}
