package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/identity --output domain/identity --outpkg identitymock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name QueryRepository --dir ../domain/bettingstats --output domain/bettingstats --outpkg bettingstatsmock --filename query_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/crawlrun --output domain/crawlrun --outpkg crawlrunmock --filename repository_mock.go
