package commerce

// GraphQL documents for the storefront API. Every cart mutation returns the
// entire cart rather than a delta: the backend is authoritative for the
// computed fields (totals, tax, availability) and the client must never
// derive them itself.

const cartFragment = `
fragment CartFragment on Cart {
  id
  checkoutUrl
  totalQuantity
  cost {
    subtotalAmount {
      amount
      currencyCode
    }
    totalAmount {
      amount
      currencyCode
    }
    totalTaxAmount {
      amount
      currencyCode
    }
  }
  lines(first: 100) {
    edges {
      node {
        id
        quantity
        merchandise {
          ... on ProductVariant {
            id
            title
            product {
              title
              handle
              featuredImage {
                url
                altText
                width
                height
              }
            }
            price {
              amount
              currencyCode
            }
            selectedOptions {
              name
              value
            }
          }
        }
      }
    }
  }
}
`

const cartCreateMutation = cartFragment + `
mutation CreateCart($lines: [CartLineInput!]!) {
  cartCreate(input: { lines: $lines }) {
    cart {
      ...CartFragment
    }
    userErrors {
      field
      message
    }
  }
}
`

const cartLinesAddMutation = cartFragment + `
mutation AddToCart($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart {
      ...CartFragment
    }
    userErrors {
      field
      message
    }
  }
}
`

const cartLinesUpdateMutation = cartFragment + `
mutation UpdateCartLine($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart {
      ...CartFragment
    }
    userErrors {
      field
      message
    }
  }
}
`

const cartLinesRemoveMutation = cartFragment + `
mutation RemoveFromCart($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart {
      ...CartFragment
    }
    userErrors {
      field
      message
    }
  }
}
`

const cartQuery = cartFragment + `
query GetCart($cartId: ID!) {
  cart(id: $cartId) {
    ...CartFragment
  }
}
`

const productFragment = `
fragment ProductFragment on Product {
  id
  handle
  title
  description
  availableForSale
  vendor
  tags
  featuredImage {
    url
    altText
    width
    height
  }
  images(first: 10) {
    edges {
      node {
        url
        altText
        width
        height
      }
    }
  }
  options {
    name
    values
  }
  variants(first: 100) {
    edges {
      node {
        id
        title
        availableForSale
        price {
          amount
          currencyCode
        }
        compareAtPrice {
          amount
          currencyCode
        }
        selectedOptions {
          name
          value
        }
        image {
          url
          altText
          width
          height
        }
      }
    }
  }
  priceRange {
    minVariantPrice {
      amount
      currencyCode
    }
    maxVariantPrice {
      amount
      currencyCode
    }
  }
}
`

const productsQuery = productFragment + `
query GetProducts($first: Int!) {
  products(first: $first) {
    edges {
      node {
        ...ProductFragment
      }
    }
  }
}
`

const productByHandleQuery = productFragment + `
query GetProductByHandle($handle: String!) {
  product(handle: $handle) {
    ...ProductFragment
  }
}
`

const collectionsQuery = `
query GetCollections($first: Int!) {
  collections(first: $first) {
    edges {
      node {
        id
        handle
        title
        description
        image {
          url
          altText
          width
          height
        }
      }
    }
  }
}
`

const collectionByHandleQuery = productFragment + `
query GetCollectionByHandle($handle: String!) {
  collection(handle: $handle) {
    id
    handle
    title
    description
    image {
      url
      altText
      width
      height
    }
    products(first: 50) {
      edges {
        node {
          ...ProductFragment
        }
      }
    }
  }
}
`

const shopQuery = `
query GetShop {
  shop {
    name
  }
}
`
