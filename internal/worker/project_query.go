package worker

import (
	"github.com/shurcooL/graphql"

	"github.com/octoharvest/octoharvest/internal/querytree"
)

// projectQuery fetches the repository-level fields the Project processor
// needs: identity, owner, license, topics, languages.
type projectQuery struct {
	Repository struct {
		ID         graphql.String
		URL        graphql.String
		Name       graphql.String
		Visibility graphql.String
		IsArchived graphql.Boolean
		DiskUsage  graphql.Int

		Owner struct {
			ID       graphql.String
			Login    graphql.String
			TypeName graphql.String `graphql:"__typename"`
		}

		LicenseInfo struct {
			SpdxID graphql.String `graphql:"spdxId"`
		}

		RepositoryTopics struct {
			Nodes []struct {
				Topic struct {
					Name graphql.String
				}
			}
		} `graphql:"repositoryTopics(first: 20)"`

		Languages struct {
			Nodes []struct {
				Name graphql.String
			}
		} `graphql:"languages(first: 20)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
	RateLimit querytree.RateLimitInfo `graphql:"rateLimit"`
}
