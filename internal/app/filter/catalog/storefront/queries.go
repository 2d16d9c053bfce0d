package storefront

const productFields = `
  handle
  vendor
  productType
  tags
  options { name values }
`

const allProductsQuery = `query AllProducts($first: Int!, $query: String) {
  products(first: $first, query: $query) {
    nodes {` + productFields + `}
  }
}`

const productsInCollectionQuery = `query ProductsInCollection($collectionHandle: String!, $first: Int!, $query: String) {
  collection(handle: $collectionHandle) {
    products(first: $first, query: $query) {
      nodes {` + productFields + `}
    }
  }
}`
